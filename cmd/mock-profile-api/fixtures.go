package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"donorprofile/internal/profile/adapter"
	"donorprofile/pkg/domain"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// publicFields are returned on a 206 response.
var publicFields = []string{"id", "name", "avatar"}

type fixtureFile struct {
	Donors []donor `yaml:"donors"`
}

type donor struct {
	UUID    string         `yaml:"uuid"`
	Public  bool           `yaml:"public"`
	Answers answers        `yaml:"answers"`
	Profile map[string]any `yaml:"profile"`
}

type answers struct {
	Gender      string `yaml:"gender"`
	Birthday    string `yaml:"birthday"`
	IDNumber    string `yaml:"id_number"`
	PhoneNumber string `yaml:"phone_number"`
}

// matches compares query answers to the fixture. The birthday arrives in the
// API's DD/MM/YYYY form.
func (a answers) matches(gender, birthday, idNumber, phone string) bool {
	return a.Gender == gender &&
		adapter.FormatBirthdayForAPI(a.Birthday) == birthday &&
		a.IDNumber == idNumber &&
		a.PhoneNumber == phone
}

func (d donor) partial() map[string]any {
	out := make(map[string]any, len(publicFields))
	for _, k := range publicFields {
		if v, ok := d.Profile[k]; ok {
			out[k] = v
		}
	}
	return out
}

// loadFixtures reads path, or the embedded defaults when path is empty.
func loadFixtures(path string) (map[string]donor, error) {
	data := defaultFixtures
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixtures: %w", err)
		}
		data = b
	}
	return parseFixtures(data)
}

func parseFixtures(data []byte) (map[string]donor, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	donors := make(map[string]donor, len(f.Donors))
	for _, d := range f.Donors {
		id, err := domain.ParseProfileID(d.UUID)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", d.UUID, err)
		}
		if d.Profile == nil {
			return nil, fmt.Errorf("fixture %s: profile is required", id)
		}
		donors[strings.ToLower(id.String())] = d
	}
	return donors, nil
}
