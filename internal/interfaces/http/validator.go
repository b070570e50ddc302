package http

import "chatfuse/internal/entities"

// connectionFieldNames are the only fields editable through the API.
var connectionFieldNames = []string{
	"name",
	"type",
	"status",
	"webhook",
	"qrPrivacy",
	"customTitle",
	"customLogo",
	"customDescription",
}

// collectConnectionFields filters a request body down to the allowed string
// fields. Non-string values and unknown keys are dropped.
func collectConnectionFields(body map[string]interface{}) map[string]string {
	fields := make(map[string]string)
	for _, name := range connectionFieldNames {
		if v, ok := body[name]; ok {
			if s, ok := v.(string); ok {
				fields[name] = s
			}
		}
	}
	return fields
}

// validateConnectionFields checks enum-typed fields, returning a user-facing
// message for the first violation.
func validateConnectionFields(fields map[string]string) string {
	if status, ok := fields["status"]; ok && !entities.ValidStatus(status) {
		return "Estado inválido. Valores permitidos: connected, pause, offline"
	}
	if privacy, ok := fields["qrPrivacy"]; ok && !entities.ValidQRPrivacy(privacy) {
		return "Valor de qrPrivacy inválido. Valores permitidos: public, private"
	}
	return ""
}
