package gate

import (
	"strings"
	"time"

	"donorprofile/internal/profile/models"
)

// Form field names, shared with the HTML form and the JSON API.
const (
	FieldGender       = "gender"
	FieldDateOfBirth  = "dateOfBirth"
	FieldIDNumber     = "idNumber"
	FieldPhoneNumber  = "phoneNumber"
	FieldCaptchaToken = "captchaToken"
)

const dateLayout = "2006-01-02"

// ValidateSubmission checks the five required inputs and returns a message per
// failing field. An empty map means the submission may proceed.
func ValidateSubmission(a models.AnswerSet, captchaToken string) map[string]string {
	fields := map[string]string{}

	switch strings.TrimSpace(a.Gender) {
	case "":
		fields[FieldGender] = "Vui lòng chọn giới tính"
	case models.GenderMale, models.GenderFemale:
	default:
		fields[FieldGender] = "Giới tính không hợp lệ"
	}

	dob := strings.TrimSpace(a.DateOfBirth)
	if dob == "" {
		fields[FieldDateOfBirth] = "Vui lòng nhập ngày sinh"
	} else if _, err := time.Parse(dateLayout, dob); err != nil {
		fields[FieldDateOfBirth] = "Ngày sinh không hợp lệ"
	}

	if strings.TrimSpace(a.IDNumber) == "" {
		fields[FieldIDNumber] = "Vui lòng nhập số CCCD/CMND"
	}
	if strings.TrimSpace(a.PhoneNumber) == "" {
		fields[FieldPhoneNumber] = "Vui lòng nhập số điện thoại"
	}
	if strings.TrimSpace(captchaToken) == "" {
		fields[FieldCaptchaToken] = "Vui lòng hoàn thành xác thực reCAPTCHA"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
