package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestMergeEnrichment_NamePolicy(t *testing.T) {
	tests := []struct {
		name         string
		existing     string
		provider     string
		wantInPatch  bool
		wantPatchVal string
	}{
		{"no_existing_specific_provider", "", "Acme Corp", true, "Acme Corp"},
		{"generic_existing_specific_provider", "Roofing", "Acme Corp", true, "Acme Corp"},
		{"specific_existing_generic_provider", "Acme Corp", "Roofing", false, ""},
		{"both_generic", "Roofing", "Contractors", true, "Contractors"},
		{"no_existing_generic_provider", "", "Roofing", true, "Roofing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ProviderPayload{}
			p.Person.Organization.Name = strp(tt.provider)

			_, patch := MergeEnrichment(p, tt.existing)
			require.NotNil(t, patch)

			if !tt.wantInPatch {
				assert.Nil(t, patch.Name, "patch must not carry a name")
				return
			}
			require.NotNil(t, patch.Name)
			assert.Equal(t, tt.wantPatchVal, *patch.Name)
		})
	}
}

func TestMergeEnrichment_AbsentFieldsDroppedFromPatch(t *testing.T) {
	p := &ProviderPayload{}
	p.Person.Organization.Name = strp("Acme Corp")
	p.Person.Organization.Industry = strp("manufacturing")
	// website_url absent on purpose

	_, patch := MergeEnrichment(p, "")
	require.NotNil(t, patch)
	assert.Nil(t, patch.Website, "absent website_url must not appear in the patch")
	require.NotNil(t, patch.Industry)
	assert.Equal(t, "manufacturing", *patch.Industry)
	assert.Nil(t, patch.Phone)
	assert.Nil(t, patch.FoundedYear)
}

func TestMergeEnrichment_ContactWrittenInFull(t *testing.T) {
	p := &ProviderPayload{}
	p.Person.ID = "prov-123"
	p.Person.FirstName = strp("Ada")
	p.Person.Email = strp("ada@acme.test")
	p.Person.PhoneNumbers = []ProviderPhone{{RawNumber: "+1 555 0100", Type: "work"}}
	// last_name, title etc. absent

	contact, _ := MergeEnrichment(p, "")
	require.NotNil(t, contact)
	assert.Equal(t, "prov-123", contact.ProviderID)
	require.NotNil(t, contact.FirstName)
	assert.Equal(t, "Ada", *contact.FirstName)
	require.NotNil(t, contact.Phone)
	assert.Equal(t, "+1 555 0100", *contact.Phone)
	// Absent fields are nil, mapped to NULL at insert, never omitted.
	assert.Nil(t, contact.LastName)
	assert.Nil(t, contact.Title)
	assert.Nil(t, contact.Seniority)
	assert.False(t, contact.LastEnrichedAt.IsZero())
}

func TestMergeEnrichment_EmployeeBuckets(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1-10"}, {10, "1-10"}, {11, "11-50"}, {200, "51-200"},
		{450, "201-500"}, {999, "501-1000"}, {4000, "1001-5000"}, {12000, "5001+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, employeeBucket(tt.n), "headcount %d", tt.n)
	}
}

func TestMergeEnrichment_SizeRangePrefersPrinted(t *testing.T) {
	p := &ProviderPayload{}
	n := 42
	p.Person.Organization.EstimatedNumEmployees = &n
	p.Person.Organization.SizeRange = strp("11-50")

	_, patch := MergeEnrichment(p, "")
	require.NotNil(t, patch.SizeRange)
	assert.Equal(t, "11-50", *patch.SizeRange)
}

func TestMergeEnrichment_NilPayload(t *testing.T) {
	contact, patch := MergeEnrichment(nil, "whatever")
	assert.Nil(t, contact)
	assert.Nil(t, patch)
}

func TestCompanyPatch_IsEmpty(t *testing.T) {
	assert.True(t, (*CompanyPatch)(nil).IsEmpty())
	assert.True(t, (&CompanyPatch{}).IsEmpty())
	assert.False(t, (&CompanyPatch{Name: strp("x")}).IsEmpty())
	assert.False(t, (&CompanyPatch{Keywords: []string{"a"}}).IsEmpty())
}
