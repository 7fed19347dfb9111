// Package identity maps LMS login ids into and out of the GIS username
// namespace. GIS usernames are LMS login ids with the organization name
// appended, e.g. "alice" <-> "alice_devorg".
package identity

import "regexp"

// The GIS suffix is the final underscore-delimited run of non-whitespace.
var gisSuffixPattern = regexp.MustCompile(`_[^_\s]+$`)

// Normalizer converts usernames between the two namespaces. It is
// stateless apart from the organization name.
type Normalizer struct {
	orgName string
}

func NewNormalizer(orgName string) Normalizer {
	return Normalizer{orgName: orgName}
}

// ToGISName appends the organization suffix to an LMS login id.
func (n Normalizer) ToGISName(loginID string) string {
	return loginID + "_" + n.orgName
}

// ToGISNames converts a roster of login ids to GIS usernames.
func (n Normalizer) ToGISNames(loginIDs []string) []string {
	gisNames := make([]string, 0, len(loginIDs))
	for _, loginID := range loginIDs {
		gisNames = append(gisNames, n.ToGISName(loginID))
	}
	return gisNames
}

// ToLMSLoginID strips the trailing organization suffix from a GIS
// username. Only the final underscore-delimited segment is removed; names
// without an underscore pass through unchanged.
func (n Normalizer) ToLMSLoginID(gisName string) string {
	return gisSuffixPattern.ReplaceAllString(gisName, "")
}

// ToLMSLoginIDs strips the organization suffix from each GIS username.
func (n Normalizer) ToLMSLoginIDs(gisNames []string) []string {
	loginIDs := make([]string, 0, len(gisNames))
	for _, gisName := range gisNames {
		loginIDs = append(loginIDs, n.ToLMSLoginID(gisName))
	}
	return loginIDs
}
