package afip

import (
	"fmt"
	"strconv"
	"strings"
)

// Condición frente al IVA del receptor, tal como la registra el ABM de
// clientes.
const (
	CondicionResponsableInscripto = "responsable_inscripto"
	CondicionMonotributo          = "monotributo"
	CondicionExento               = "exento"
	CondicionConsumidorFinal      = "consumidor_final"
)

// Tipos de comprobante (CbteTipo).
const (
	CbteTipoFacturaA = 1
	CbteTipoFacturaB = 6
	CbteTipoFacturaC = 11
)

// Tipos de documento del receptor (DocTipo).
const (
	DocTipoCUIT            = 80
	DocTipoCUIL            = 86
	DocTipoDNI             = 96
	DocTipoConsumidorFinal = 99
)

// Alícuota de IVA 21% — único tratamiento impositivo del sistema: se
// aplica cuando el receptor es responsable inscripto, cero en los demás
// casos. Id 5 es el código de alícuota de la autoridad fiscal.
const (
	ivaAlicuotaID21 = 5
	ivaRate         = 0.21
)

var cbteTipoPorCondicion = map[string]int{
	CondicionResponsableInscripto: CbteTipoFacturaA,
	CondicionMonotributo:          CbteTipoFacturaB,
	CondicionExento:               CbteTipoFacturaB,
	CondicionConsumidorFinal:      CbteTipoFacturaB,
}

var docTipoPorNombre = map[string]int{
	"CUIT": DocTipoCUIT,
	"CUIL": DocTipoCUIL,
	"DNI":  DocTipoDNI,
}

// CbteTipoPara resolves the invoice class for a client's tax condition.
// Unknown or empty conditions fall back to the configured default so the
// billing and QR paths always agree on the same code.
func CbteTipoPara(condicionIVA string, fallback int) int {
	if tipo, ok := cbteTipoPorCondicion[strings.ToLower(strings.TrimSpace(condicionIVA))]; ok {
		return tipo
	}
	return fallback
}

// DocTipoPara resolves the identity-document code; anything unrecognized
// is treated as consumidor final (DocNro 0).
func DocTipoPara(tipoDocumento string) int {
	if code, ok := docTipoPorNombre[strings.ToUpper(strings.TrimSpace(tipoDocumento))]; ok {
		return code
	}
	return DocTipoConsumidorFinal
}

// FormatNumeroOficial renders the printed invoice identifier:
// zero-padded selling point and sequence joined by a hyphen.
func FormatNumeroOficial(ptoVta int, nro int64) string {
	return fmt.Sprintf("%05d-%08d", ptoVta, nro)
}

// ParseNumeroOficial splits a "00001-00000123" identifier back into its
// selling point and sequential number.
func ParseNumeroOficial(s string) (ptoVta int, nro int64, err error) {
	before, after, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, fmt.Errorf("número oficial malformado: %q", s)
	}
	pv, err := strconv.Atoi(before)
	if err != nil {
		return 0, 0, fmt.Errorf("número oficial malformado: %q", s)
	}
	n, err := strconv.ParseInt(after, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("número oficial malformado: %q", s)
	}
	return pv, n, nil
}

// parseDocNro strips the usual separators from a document number and
// parses what remains as an integer. Any surviving non-digit (or an empty
// string) is a malformed number.
func parseDocNro(s string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ', '/':
			return -1
		}
		return r
	}, s)
	return strconv.ParseInt(cleaned, 10, 64)
}

// parseDigits is the lenient variant used for QR payload fields: the QR is
// advisory relative to the CAE already on the invoice, so a malformed
// field degrades to 0 instead of failing.
func parseDigits(s string) int64 {
	n, err := parseDocNro(s)
	if err != nil {
		return 0
	}
	return n
}
