package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cadence/internal/modules/notify/domain"
)

const validSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	valid := domain.Manifest{Name: "console", Version: "1", Binary: "/tmp/p", SHA256: validSHA, Enabled: true, Capabilities: []domain.Capability{domain.CapabilityNotify}}
	cases := []struct {
		name      string
		mutate    func(*domain.Manifest)
		shouldErr bool
	}{
		{name: "valid", mutate: func(*domain.Manifest) {}},
		{name: "missing name", mutate: func(m *domain.Manifest) { m.Name = "" }, shouldErr: true},
		{name: "missing version", mutate: func(m *domain.Manifest) { m.Version = "" }, shouldErr: true},
		{name: "missing binary", mutate: func(m *domain.Manifest) { m.Binary = "" }, shouldErr: true},
		{name: "uppercase sha", mutate: func(m *domain.Manifest) { m.SHA256 = "AA" + validSHA[2:] }, shouldErr: true},
		{name: "unknown capability", mutate: func(m *domain.Manifest) { m.Capabilities = []domain.Capability{"analyze"} }, shouldErr: true},
		{name: "duplicate capability", mutate: func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityNotify, domain.CapabilityNotify}
		}, shouldErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manifest := valid
			manifest.Capabilities = append([]domain.Capability(nil), valid.Capabilities...)
			tc.mutate(&manifest)
			err := manifest.Validate()
			if tc.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDigestRendering(t *testing.T) {
	t.Parallel()
	empty := domain.Digest{Date: "2024-01-10"}
	assert.True(t, empty.Empty())
	assert.Equal(t, "No reviews due on 2024-01-10", empty.Title())
	assert.Empty(t, empty.Body())

	digest := domain.Digest{
		Date:     "2024-01-10",
		Overdue:  []domain.DigestItem{{Subject: "Math", Topic: "Limits", DueAt: "2024-01-08", DaysLate: 2}},
		DueToday: []domain.DigestItem{{Subject: "Biology", Topic: "Cells", DueAt: "2024-01-10"}},
	}
	assert.Equal(t, "1 review(s) due today, 1 overdue", digest.Title())
	assert.Equal(t, "! Math: Limits (due 2024-01-08, 2d late)\n- Biology: Cells\n", digest.Body())
}
