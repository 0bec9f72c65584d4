package web

import (
	"fmt"

	"donorprofile/internal/profile/models"
)

// Meta is rendered into the page head.
type Meta struct {
	Title       string
	Description string
	Keywords    []string
	OGType      string
}

// ExampleUUIDs are the sample profiles linked from the landing pages.
var ExampleUUIDs = []string{
	"550e8400-e29b-41d4-a716-446655440000",
	"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
	"6ba7b811-9dad-11d1-80b4-00c04fd430c8",
}

// HomeView is the landing page.
type HomeView struct {
	SampleUUID string
}

// IndexView lists sample profiles.
type IndexView struct {
	ExampleUUIDs []string
}

// ProfileView is a verified or full profile.
type ProfileView struct {
	Profile models.Profile
}

// FormValues echoes what the viewer typed back into the form.
type FormValues struct {
	Gender      string
	DateOfBirth string
	IDNumber    string
	PhoneNumber string
}

// SelectOption is one select entry.
type SelectOption struct {
	Value string
	Label string
}

// GenderOptions maps the upstream gender codes to their labels.
var GenderOptions = []SelectOption{
	{Value: models.GenderMale, Label: "Nam"},
	{Value: models.GenderFemale, Label: "Nữ"},
}

// VerifyView is the identity verification form.
type VerifyView struct {
	UUID          string
	FullName      string
	Avatar        string
	Form          FormValues
	GenderOptions []SelectOption
	Error         string
	Details       []string
	FieldErrors   map[string]string
	CaptchaReset  bool
}

func HomeMeta() Meta {
	return Meta{
		Title:       "Hệ thống Hiến máu",
		Description: "Quản lý và xem hồ sơ hiến máu công khai với URL bảo mật dựa trên UUID.",
	}
}

func IndexMeta() Meta {
	return Meta{
		Title:       "Hệ thống Hồ sơ Hiến máu",
		Description: "Truy cập hồ sơ hiến máu công khai với URL có mã định danh UUID duy nhất",
		Keywords:    []string{"hiến máu", "hồ sơ hiến máu", "hệ thống hiến máu", "UUID"},
	}
}

// ProfileMeta describes a displayed profile.
func ProfileMeta(p models.Profile) Meta {
	keywords := []string{"hiến máu", "hồ sơ hiến máu", "lịch sử hiến máu"}
	if p.BloodType != "" {
		keywords = append(keywords, p.BloodType)
	}
	return Meta{
		Title: "Hồ sơ hiến máu - " + p.FullName,
		Description: fmt.Sprintf("Xem hồ sơ hiến máu và lịch sử đóng góp của %s. Nhóm máu %s, đã hiến %d lần.",
			p.FullName, p.BloodType, p.Ranking.TotalDonations),
		Keywords: keywords,
		OGType:   "profile",
	}
}

// VerifyMeta titles the form page. Nothing beyond the name leaks into the head.
func VerifyMeta(fullName string) Meta {
	if fullName == "" {
		return Meta{Title: "Xác thực hồ sơ hiến máu"}
	}
	return Meta{Title: "Hồ sơ hiến máu - " + fullName}
}

func NotFoundMeta() Meta {
	return Meta{Title: "Không tìm thấy hồ sơ"}
}
