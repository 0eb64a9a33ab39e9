package lead

import "strings"

// genericNameMaxLen is the length below which a keyword hit flags the whole
// name as generic. Longer names must equal a keyword exactly to be flagged,
// so "Advanced Roofing Solutions Group LLC" stays specific.
const genericNameMaxLen = 25

// industryKeywords is the vocabulary of category labels a noisy provider
// returns in place of a proper company name.
var industryKeywords = []string{
	"roofing", "plumbing", "hvac", "electrical", "landscaping", "painting",
	"flooring", "remodeling", "construction", "contractors", "restoration",
	"cleaning", "janitorial", "pest control", "moving", "storage",
	"consulting", "staffing", "recruiting", "accounting", "bookkeeping",
	"insurance", "real estate", "property management", "mortgage",
	"marketing", "advertising", "software", "technology", "it services",
	"web design", "logistics", "trucking", "freight", "manufacturing",
	"fabrication", "machining", "printing", "packaging", "distribution",
	"wholesale", "automotive", "dealership", "healthcare", "dental",
	"chiropractic", "veterinary", "law firm", "legal services", "security",
}

// IsGenericName reports whether a free-text company name looks like an
// industry-category label rather than a specific proper name.
func IsGenericName(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, kw := range industryKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		if len(name) < genericNameMaxLen || lower == kw {
			return true
		}
	}
	return false
}
