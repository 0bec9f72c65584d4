package models

// Profile is the display-ready donor profile. It is derived from an APIProfile
// on every fetch and has no identity of its own.
type Profile struct {
	Avatar          string           `json:"avatar"`
	FullName        string           `json:"fullName"`
	DateOfBirth     string           `json:"dateOfBirth"`
	Email           string           `json:"email,omitempty"`
	Gender          string           `json:"gender"`
	BloodType       string           `json:"bloodType"`
	Address         string           `json:"address,omitempty"`
	PhoneNumber     string           `json:"phoneNumber,omitempty"`
	IDNumber        string           `json:"idNumber,omitempty"`
	FacebookAccount string           `json:"facebookAccount,omitempty"`
	PlaceOfBirth    string           `json:"placeOfBirth,omitempty"`
	DonationHistory []DonationRecord `json:"donationHistory"`
	Ranking         Ranking          `json:"ranking"`
	TopDonors       []TopDonor       `json:"topDonors"`
}

// DonationRecord is one rendered history row.
type DonationRecord struct {
	Date          string `json:"date"`
	Location      string `json:"location"`
	PlateletCount int    `json:"plateletCount"`
	DonationType  string `json:"donationType"`
}

// Ranking summarizes where the donor stands.
type Ranking struct {
	CurrentRank        int `json:"currentRank"`
	TotalDonations     int `json:"totalDonations"`
	TotalDonors        int `json:"totalDonors"`
	SameBloodTypeCount int `json:"sameBloodTypeCount"`
}

// TopDonor is one rendered leaderboard row.
type TopDonor struct {
	Name             string `json:"name"`
	Donations        int    `json:"donations"`
	BloodType        string `json:"bloodType"`
	LastDonationDate string `json:"lastDonationDate,omitempty"`
}
