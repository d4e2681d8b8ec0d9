package terminology

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherCategory buckets codes that are present but unrecognised.
const OtherCategory = "Other"

// Catalog holds the code lists used to normalise categorical columns.
// Codes are matched trimmed and uppercased.
type Catalog struct {
	RoleCategories   map[string][]string `yaml:"role_categories" json:"role_categories"`
	ICUCareUnits     []string            `yaml:"icu_care_units" json:"icu_care_units"`
	AbnormalLabFlags []string            `yaml:"abnormal_lab_flags" json:"abnormal_lab_flags"`

	roles    map[string]string
	icu      map[string]struct{}
	abnormal map[string]struct{}
}

// Load reads a YAML catalog. An empty path selects DefaultCatalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read terminology catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return nil, fmt.Errorf("decode terminology catalog: %w", err)
	}
	if err := cat.compile(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func toSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[normalize(c)] = struct{}{}
	}
	return set
}

func (c *Catalog) compile() error {
	if len(c.RoleCategories) == 0 || len(c.ICUCareUnits) == 0 || len(c.AbnormalLabFlags) == 0 {
		return fmt.Errorf("terminology catalog empty")
	}

	categories := make([]string, 0, len(c.RoleCategories))
	for category := range c.RoleCategories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	c.roles = make(map[string]string)
	for _, category := range categories {
		for _, code := range c.RoleCategories[category] {
			key := normalize(code)
			if prev, ok := c.roles[key]; ok {
				return fmt.Errorf("role code %q listed under both %s and %s", key, prev, category)
			}
			c.roles[key] = category
		}
	}
	c.icu = toSet(c.ICUCareUnits)
	c.abnormal = toSet(c.AbnormalLabFlags)
	return nil
}

// RoleCategory maps a caregiver label to its role group. A nil or blank
// label has no category.
func (c *Catalog) RoleCategory(label *string) *string {
	if label == nil {
		return nil
	}
	key := normalize(*label)
	if key == "" {
		return nil
	}
	category, ok := c.roles[key]
	if !ok {
		category = OtherCategory
	}
	return &category
}

func (c *Catalog) IsICUUnit(unit *string) bool {
	if unit == nil {
		return false
	}
	_, ok := c.icu[normalize(*unit)]
	return ok
}

func (c *Catalog) IsAbnormalFlag(flag *string) bool {
	if flag == nil {
		return false
	}
	_, ok := c.abnormal[normalize(*flag)]
	return ok
}

func DefaultCatalog() *Catalog {
	cat := &Catalog{
		RoleCategories: map[string][]string{
			"Nursing":     {"RN", "RN-BSN", "RN-MSN", "LPN", "CNA", "NURSE"},
			"Physician":   {"MD", "DO", "RES", "RESIDENT", "FELLOW", "PA", "NP"},
			"Respiratory": {"RT", "RRT", "RESPIRATORY"},
			"Pharmacy":    {"PHARM", "PHARMD", "RPH"},
			"System":      {"RO", "READ ONLY", "SYSTEM"},
		},
		ICUCareUnits:     []string{"MICU", "SICU", "CCU", "CSRU", "TSICU", "NICU", "NWARD"},
		AbnormalLabFlags: []string{"abnormal", "delta", "high", "low", "h", "l", "a"},
	}
	if err := cat.compile(); err != nil {
		panic(err)
	}
	return cat
}
