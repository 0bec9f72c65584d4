package models

// AnswerSet is the identity tuple a viewer supplies to unlock a partial profile.
// DateOfBirth uses the internal YYYY-MM-DD order; Timestamp is Unix milliseconds
// and is stamped by the verification cache on write.
type AnswerSet struct {
	UUID        string `json:"uuid"`
	FullName    string `json:"fullName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	IDNumber    string `json:"idNumber"`
	PhoneNumber string `json:"phoneNumber"`
	Timestamp   int64  `json:"timestamp"`
}

// Gender codes accepted by the upstream API.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)
