package booking

import (
	"strings"
)

// DateLayout is the form's date format.
const DateLayout = "2006-01-02"

// Request holds the values entered on the booking form.
type Request struct {
	ClientName string `json:"client_name"`
	WhatsApp   string `json:"whatsapp"`
	Email      string `json:"email,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Service    string `json:"service"`
	Barber     string `json:"barber"`
	Note       string `json:"note,omitempty"`
}

// Field names reported by ValidationError.
const (
	FieldClientName = "client_name"
	FieldWhatsApp   = "whatsapp"
	FieldDate       = "date"
	FieldTime       = "time"
	FieldService    = "service"
	FieldBarber     = "barber"
)

// Validate checks that every required field is present. Only presence is
// checked: any non-blank value passes.
func Validate(req Request) error {
	required := []struct {
		name  string
		value string
	}{
		{FieldClientName, req.ClientName},
		{FieldWhatsApp, req.WhatsApp},
		{FieldDate, req.Date},
		{FieldTime, req.Time},
		{FieldService, req.Service},
		{FieldBarber, req.Barber},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
