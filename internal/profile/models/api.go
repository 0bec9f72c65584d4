package models

// APIProfile is the raw public profile returned by the upstream profile API.
// Optional scalar fields are pointers; the upstream omits them on partial responses.
type APIProfile struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	Email           *string        `json:"email,omitempty"`
	Address         *string        `json:"address,omitempty"`
	Gender          *string        `json:"gender,omitempty"`
	IDNumber        *string        `json:"id_number,omitempty"`
	PhoneNumber     *string        `json:"phone_number,omitempty"`
	PhoneNumber2    *string        `json:"phone_number_2,omitempty"`
	BloodType       *string        `json:"blood_type,omitempty"`
	Avatar          AvatarURLs     `json:"avatar"`
	Birthday        *string        `json:"birthday,omitempty"`
	FacebookAccount *string        `json:"facebook_account,omitempty"`
	PlaceOfBirth    *string        `json:"place_of_birth,omitempty"`
	CreatedAt       *string        `json:"created_at,omitempty"`
	UpdatedAt       *string        `json:"updated_at,omitempty"`
	Histories       []APIDonation  `json:"histories,omitempty"`
	Statistics      *APIStatistics `json:"statistics,omitempty"`
}

// AvatarURLs lists the upstream image variants.
type AvatarURLs struct {
	URL    string     `json:"url"`
	Thumb  *AvatarURL `json:"thumb,omitempty"`
	Medium *AvatarURL `json:"medium,omitempty"`
	Small  *AvatarURL `json:"small,omitempty"`
}

// AvatarURL is a single resized avatar.
type AvatarURL struct {
	URL string `json:"url"`
}

// APIPlace is where a donation happened.
type APIPlace struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	IsHospital bool   `json:"is_hospital"`
}

// APIDonation is one entry of the donation history.
type APIDonation struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	DonationType  string    `json:"donation_type"`
	PlateletCount int       `json:"platelet_count"`
	IsVerified    bool      `json:"is_verified"`
	Place         *APIPlace `json:"place,omitempty"`
}

// APITopDonor is a leaderboard row. The upstream rank field is unreliable and ignored.
type APITopDonor struct {
	Rank             int    `json:"rank"`
	Name             string `json:"name"`
	BloodType        string `json:"blood_type"`
	DonationCount    int    `json:"donation_count"`
	LastDonationDate string `json:"last_donation_date"`
}

// APIStatistics is the ranking block.
type APIStatistics struct {
	SameBloodTypeCount int           `json:"same_blood_type_count"`
	TotalDonorsCount   int           `json:"total_donors_count"`
	TotalDonations     int           `json:"total_donations"`
	CurrentRank        int           `json:"current_rank"`
	TopDonors          []APITopDonor `json:"top_donors,omitempty"`
}
