// Package adapter converts the upstream profile representation into the
// display-ready shape. Every function here is pure and total: missing or
// unrecognized values degrade to empty strings, pass-through codes, or empty
// slices, never to errors.
package adapter

import (
	"strings"

	"donorprofile/internal/profile/models"
)

// Donation type labels.
const (
	LabelPlatelets  = "Hiến tiểu cầu"
	LabelWholeBlood = "Hiến toàn phần"
)

const donationTypePlatelets = "platelets"

var bloodTypes = map[string]string{
	"a_pos":  "A+",
	"a_neg":  "A-",
	"b_pos":  "B+",
	"b_neg":  "B-",
	"ab_pos": "AB+",
	"ab_neg": "AB-",
	"o_pos":  "O+",
	"o_neg":  "O-",
}

var genders = map[string]string{
	models.GenderMale:   "Nam",
	models.GenderFemale: "Nữ",
}

// Normalize converts a raw upstream profile to the internal Profile.
func Normalize(raw models.APIProfile) models.Profile {
	history := donationHistory(raw.Histories)

	return models.Profile{
		Avatar:          avatarURL(raw.Avatar),
		FullName:        raw.Name,
		DateOfBirth:     deref(raw.Birthday),
		Email:           deref(raw.Email),
		Gender:          DecodeGender(deref(raw.Gender)),
		BloodType:       DecodeBloodType(deref(raw.BloodType)),
		Address:         deref(raw.Address),
		PhoneNumber:     deref(raw.PhoneNumber),
		IDNumber:        deref(raw.IDNumber),
		FacebookAccount: deref(raw.FacebookAccount),
		PlaceOfBirth:    deref(raw.PlaceOfBirth),
		DonationHistory: history,
		Ranking:         ranking(raw.Statistics, len(history)),
		TopDonors:       topDonors(raw.Statistics),
	}
}

// DecodeBloodType maps an upstream code such as "ab_neg" to "AB-".
// Unknown codes are returned unchanged.
func DecodeBloodType(code string) string {
	if label, ok := bloodTypes[code]; ok {
		return label
	}
	return code
}

// DecodeGender maps "male"/"female" to the localized label.
// Unknown codes are returned unchanged.
func DecodeGender(code string) string {
	if label, ok := genders[code]; ok {
		return label
	}
	return code
}

// DonationTypeLabel renders the history entry tag.
func DonationTypeLabel(tag string) string {
	if tag == donationTypePlatelets {
		return LabelPlatelets
	}
	return LabelWholeBlood
}

// FormatBirthdayForAPI reorders YYYY-MM-DD into the DD/MM/YYYY form the
// upstream expects. Input that is not three dash-separated parts is returned as-is.
func FormatBirthdayForAPI(birthday string) string {
	parts := strings.Split(birthday, "-")
	if len(parts) != 3 {
		return birthday
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

func avatarURL(a models.AvatarURLs) string {
	if a.Medium != nil && a.Medium.URL != "" {
		return a.Medium.URL
	}
	return a.URL
}

func donationHistory(entries []models.APIDonation) []models.DonationRecord {
	records := make([]models.DonationRecord, 0, len(entries))
	for _, h := range entries {
		location := ""
		if h.Place != nil {
			location = h.Place.Name
		}
		records = append(records, models.DonationRecord{
			Date:          h.Date,
			Location:      location,
			PlateletCount: h.PlateletCount,
			DonationType:  DonationTypeLabel(h.DonationType),
		})
	}
	return records
}

// ranking falls back to the history length for the donation total when the
// upstream sends no statistics block.
func ranking(stats *models.APIStatistics, historyLen int) models.Ranking {
	if stats == nil {
		return models.Ranking{TotalDonations: historyLen}
	}
	return models.Ranking{
		CurrentRank:        stats.CurrentRank,
		TotalDonations:     stats.TotalDonations,
		TotalDonors:        stats.TotalDonorsCount,
		SameBloodTypeCount: stats.SameBloodTypeCount,
	}
}

func topDonors(stats *models.APIStatistics) []models.TopDonor {
	if stats == nil {
		return []models.TopDonor{}
	}
	donors := make([]models.TopDonor, 0, len(stats.TopDonors))
	for _, d := range stats.TopDonors {
		donors = append(donors, models.TopDonor{
			Name:             strings.TrimSpace(d.Name),
			Donations:        d.DonationCount,
			BloodType:        DecodeBloodType(d.BloodType),
			LastDonationDate: d.LastDonationDate,
		})
	}
	return donors
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
