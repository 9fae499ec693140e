// redact маскирует персональные данные перед записью в логи.
package redact

import "strings"

// Email оставляет первые два символа локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***"
	}

	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token маскирует значение заголовка Authorization, сохраняя только схему,
// чтобы в логе было видно, с чем пришёл клиент.
func Token(header string) string {
	if header == "" {
		return ""
	}

	scheme, _, ok := strings.Cut(header, " ")
	if !ok {
		return "[REDACTED_TOKEN]"
	}

	return scheme + " [REDACTED_TOKEN]"
}
