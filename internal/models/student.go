package models

// Student is the slice of the student record this engine needs: who to
// bill and who to contact. The full student record lives elsewhere.
type Student struct {
	ID               string `json:"id"`
	TenantID         string `json:"tenant_id"`
	Name             string `json:"name"`
	GuardianName     string `json:"guardian_name"`
	GuardianPhone    string `json:"guardian_phone"`
	PreferredChannel string `json:"preferred_channel"` // sms or whatsapp
}
