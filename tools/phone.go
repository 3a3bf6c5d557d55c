package tools

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizePhoneBR deixa o telefone em formato internacional só com dígitos
// (ex.: 5511987654321), que é como fica gravado na conta.
//
// - remove tudo que não é dígito
// - se vier com 10/11 dígitos (DDD+número), prefixa 55
// - se já vier com DDI (12 ou 13 dígitos), mantém
func NormalizePhoneBR(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("telefone vazio")
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	phone := strings.TrimLeft(b.String(), "0")

	if len(phone) == 10 || len(phone) == 11 {
		phone = "55" + phone
	}

	if len(phone) < 12 || len(phone) > 13 {
		return "", fmt.Errorf("telefone inválido: %d dígitos", len(phone))
	}
	return phone, nil
}
