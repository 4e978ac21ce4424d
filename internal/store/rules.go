package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/bank-import/internal/categorizer"
	"fjacquet/bank-import/internal/fileutils"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/manualparser"
	"fjacquet/bank-import/internal/models"

	"gopkg.in/yaml.v3"
)

// Default rule and profile file names.
const (
	ExpenseRulesFile   = "categories.yaml"
	IncomeRulesFile    = "income.yaml"
	ExclusionRulesFile = "exclusions.yaml"
	MappingsFile       = "mappings.yaml"
)

// ErrUnknownProfile is returned when a mapping profile name is not defined.
var ErrUnknownProfile = errors.New("unknown mapping profile")

// RuleGroup is one outcome and the keywords that select it, as written in
// the rule files. Groups are evaluated in file order.
type RuleGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type categoriesFile struct {
	Categories []RuleGroup `yaml:"categories"`
}

type exclusionsFile struct {
	Exclusions []RuleGroup `yaml:"exclusions"`
}

type mappingsFile struct {
	Profiles map[string]manualparser.ColumnMapping `yaml:"profiles"`
}

// CategoryStore loads keyword-table overrides and manual mapping profiles
// from YAML files. A missing rule file keeps the built-in table.
type CategoryStore struct {
	Dir            string
	CategoriesFile string
	IncomeFile     string
	ExclusionsFile string
	MappingsFile   string

	logger logging.Logger
}

var _ categorizer.RuleStore = (*CategoryStore)(nil)

// NewCategoryStore creates a store that resolves files relative to dir.
// An empty dir searches the standard locations.
func NewCategoryStore(dir string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		Dir:            dir,
		CategoriesFile: ExpenseRulesFile,
		IncomeFile:     IncomeRulesFile,
		ExclusionsFile: ExclusionRulesFile,
		MappingsFile:   MappingsFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for filename in Dir, then ./config, then
// ~/.config/bank-import. Absolute paths are used as is.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	var locations []string
	if s.Dir != "" {
		locations = append(locations, filepath.Join(s.Dir, filename))
	} else {
		locations = append(locations, filename, filepath.Join("config", filename))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "bank-import", filename))
	}

	for _, location := range locations {
		if fileutils.FileExists(location) {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// readOptional returns nil data when the file cannot be found.
func (s *CategoryStore) readOptional(filename string) ([]byte, string, error) {
	path, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Rule file not found, using built-in table", logging.F(logging.FieldFile, filename))
		return nil, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, path, nil
}

// LoadExpenseRules reads expense keyword overrides. Names must be expense
// categories.
func (s *CategoryStore) LoadExpenseRules() ([]categorizer.KeywordRule[models.ExpenseCategory], error) {
	known := make(map[string]models.ExpenseCategory)
	for _, c := range models.ExpenseCategories() {
		known[string(c)] = c
	}
	return loadCategoryRules(s, s.CategoriesFile, known)
}

// LoadIncomeRules reads income keyword overrides.
func (s *CategoryStore) LoadIncomeRules() ([]categorizer.KeywordRule[models.IncomeCategory], error) {
	known := map[string]models.IncomeCategory{
		string(models.IncomeSales): models.IncomeSales,
		string(models.IncomeOther): models.IncomeOther,
	}
	return loadCategoryRules(s, s.IncomeFile, known)
}

// LoadExclusionRules reads exclusion keyword overrides.
func (s *CategoryStore) LoadExclusionRules() ([]categorizer.KeywordRule[models.ExclusionReason], error) {
	data, path, err := s.readOptional(s.ExclusionsFile)
	if err != nil || data == nil {
		return nil, err
	}

	var file exclusionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	known := make(map[string]models.ExclusionReason)
	for _, r := range models.ExclusionReasons() {
		known[string(r)] = r
	}
	rules, err := toRules(file.Exclusions, known)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.logger.Info("Loaded exclusion rules",
		logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

func loadCategoryRules[T ~string](s *CategoryStore, filename string, known map[string]T) ([]categorizer.KeywordRule[T], error) {
	data, path, err := s.readOptional(filename)
	if err != nil || data == nil {
		return nil, err
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	rules, err := toRules(file.Categories, known)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.logger.Info("Loaded keyword rules",
		logging.F(logging.FieldFile, path), logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

// toRules flattens groups into keyword rules, keeping file order.
// An empty file yields nil so the built-in table stays in force.
func toRules[T ~string](groups []RuleGroup, known map[string]T) ([]categorizer.KeywordRule[T], error) {
	var rules []categorizer.KeywordRule[T]
	for _, g := range groups {
		outcome, ok := known[strings.ToUpper(strings.TrimSpace(g.Name))]
		if !ok {
			return nil, fmt.Errorf("unknown rule name %q", g.Name)
		}
		for _, kw := range g.Keywords {
			if strings.TrimSpace(kw) == "" {
				continue
			}
			rules = append(rules, categorizer.KeywordRule[T]{Keyword: kw, Outcome: outcome})
		}
	}
	return rules, nil
}

// LoadMappings reads every manual mapping profile. A missing file yields an
// empty map.
func (s *CategoryStore) LoadMappings() (map[string]manualparser.ColumnMapping, error) {
	data, path, err := s.readOptional(s.MappingsFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return map[string]manualparser.ColumnMapping{}, nil
	}

	var file mappingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if file.Profiles == nil {
		file.Profiles = map[string]manualparser.ColumnMapping{}
	}
	for name, m := range file.Profiles {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%s: profile %q: %w", path, name, err)
		}
	}
	return file.Profiles, nil
}

// Mapping returns the named profile.
func (s *CategoryStore) Mapping(name string) (manualparser.ColumnMapping, error) {
	profiles, err := s.LoadMappings()
	if err != nil {
		return manualparser.ColumnMapping{}, err
	}
	m, ok := profiles[name]
	if !ok {
		return manualparser.ColumnMapping{}, fmt.Errorf("%w: %s (available: %s)",
			ErrUnknownProfile, name, strings.Join(profileNames(profiles), ", "))
	}
	return m, nil
}

// SaveMapping validates and stores a profile under name, creating the
// mappings file in Dir (or ./config) when needed.
func (s *CategoryStore) SaveMapping(name string, mapping manualparser.ColumnMapping) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("profile name must not be empty")
	}
	if err := mapping.Validate(); err != nil {
		return err
	}

	profiles, err := s.LoadMappings()
	if err != nil {
		return err
	}
	profiles[name] = mapping

	path, err := s.FindConfigFile(s.MappingsFile)
	if err != nil {
		dir := s.Dir
		if dir == "" {
			dir = "config"
		}
		if err := fileutils.EnsureDirectoryExists(dir); err != nil {
			return fmt.Errorf("error creating %s: %w", dir, err)
		}
		path = filepath.Join(dir, s.MappingsFile)
	}

	data, err := yaml.Marshal(mappingsFile{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("error encoding mappings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	s.logger.Info("Saved mapping profile", logging.F("profile", name), logging.F(logging.FieldFile, path))
	return nil
}

func profileNames(profiles map[string]manualparser.ColumnMapping) []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
