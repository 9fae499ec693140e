// auth содержит криптографическое ядро сервиса: хэширование паролей (bcrypt)
// и выпуск/проверку подписанных access-токенов (JWT HS256).
//
// Пакет не хранит состояния между вызовами, кроме неизменяемой конфигурации,
// переданной в конструкторы; все типы безопасны для конкурентного использования.
package auth

import "errors"

var (
	// ErrInvalidToken - токен некорректен по формату, подписи, алгоритму
	// или не содержит subject.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired - подпись верна, но срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")

	// ErrPasswordTooLong - пароль длиннее 72 байт (ограничение bcrypt).
	ErrPasswordTooLong = errors.New("password is too long")
)
