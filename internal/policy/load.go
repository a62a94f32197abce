package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/climbdiet/internal/domain"
)

// ErrInvalidPolicy is returned when an override file fails validation.
var ErrInvalidPolicy = errors.New("invalid policy")

type slotFile struct {
	KcalShare *float64 `yaml:"kcal_share"`
	Carbs     *float64 `yaml:"carbs"`
	Protein   *float64 `yaml:"protein"`
	Fat       *float64 `yaml:"fat"`
	Allowed   []string `yaml:"allowed"`
}

type quotaFile struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type bandFile struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type weeklyFile struct {
	Horizon          *int     `yaml:"horizon"`
	LimitedDays      *int     `yaml:"limited_days"`
	DefaultDays      *int     `yaml:"default_days"`
	Unlimited        []string `yaml:"unlimited"`
	WindowSize       *int     `yaml:"window_size"`
	LimitedWindowMax *int     `yaml:"limited_window_max"`
	DefaultWindowMax *int     `yaml:"default_window_max"`
	RecipeMaxDays    *int     `yaml:"recipe_max_days"`
	RecipeWindowMax  *int     `yaml:"recipe_window_max"`
}

// file mirrors the YAML override document. Every field is optional and
// overlays the default table; maps are keyed by slot, category slug or
// variant name.
type file struct {
	Kcal            *bandFile            `yaml:"kcal"`
	Slots           map[string]slotFile  `yaml:"slots"`
	Day             *Macros              `yaml:"day"`
	ServingMin      *float64             `yaml:"serving_min"`
	Quotas          map[string]quotaFile `yaml:"quotas"`
	Beverages       []string             `yaml:"beverages"`
	BeverageMin     *float64             `yaml:"beverage_min"`
	Staples         []string             `yaml:"staples"`
	DessertMin      *float64             `yaml:"dessert_min"`
	Weekly          *weeklyFile          `yaml:"weekly"`
	MIPGap          map[string]float64   `yaml:"mip_gap"`
	WeeklyCapMode   map[string]string    `yaml:"weekly_cap_mode"`
	ReportThreshold *float64             `yaml:"report_threshold"`
}

// Load reads a YAML override file and applies it on top of Default.
// An empty path returns the default table.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML override data on top of Default and validates the result.
func Parse(data []byte) (*Policy, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}

	p := Default()
	errs := f.apply(p)
	errs = append(errs, p.Validate()...)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = "  - " + e.Error()
		}
		return nil, fmt.Errorf("%w (%d errors):\n%s", ErrInvalidPolicy, len(errs), strings.Join(msgs, "\n"))
	}
	return p, nil
}

func (f *file) apply(p *Policy) []error {
	var errs []error

	if f.Kcal != nil {
		setFloat(&p.KcalMin, f.Kcal.Min)
		setFloat(&p.KcalMax, f.Kcal.Max)
	}
	for key, sf := range f.Slots {
		slot, err := domain.ParseSlot(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("slots.%s: %w", key, err))
			continue
		}
		if sf.KcalShare != nil {
			p.KcalShare[slot] = *sf.KcalShare
		}
		m := p.MacroShare[slot]
		setFloat(&m.Carbs, sf.Carbs)
		setFloat(&m.Protein, sf.Protein)
		setFloat(&m.Fat, sf.Fat)
		p.MacroShare[slot] = m
		if sf.Allowed != nil {
			cats, catErrs := parseSlugs(fmt.Sprintf("slots.%s.allowed", key), sf.Allowed)
			errs = append(errs, catErrs...)
			p.Allowed[slot] = cats
		}
	}
	if f.Day != nil {
		p.DayMacroShare = *f.Day
	}
	setFloat(&p.ServingMin, f.ServingMin)
	for key, qf := range f.Quotas {
		cat, err := domain.ParseCategorySlug(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("quotas.%s: %w", key, err))
			continue
		}
		idx := -1
		for i, q := range p.Quotas {
			if q.Category == cat {
				idx = i
			}
		}
		if idx < 0 {
			p.Quotas = append(p.Quotas, Quota{Category: cat})
			idx = len(p.Quotas) - 1
		}
		setFloat(&p.Quotas[idx].Min, qf.Min)
		setFloat(&p.Quotas[idx].Max, qf.Max)
	}
	if f.Beverages != nil {
		p.Beverages = f.Beverages
	}
	setFloat(&p.BeverageMin, f.BeverageMin)
	if f.Staples != nil {
		p.Staples = f.Staples
	}
	setFloat(&p.DessertMin, f.DessertMin)
	if w := f.Weekly; w != nil {
		setInt(&p.Horizon, w.Horizon)
		setInt(&p.LimitedDays, w.LimitedDays)
		setInt(&p.DefaultDays, w.DefaultDays)
		if w.Unlimited != nil {
			p.Unlimited = w.Unlimited
		}
		setInt(&p.WindowSize, w.WindowSize)
		setInt(&p.LimitedWindowMax, w.LimitedWindowMax)
		setInt(&p.DefaultWindowMax, w.DefaultWindowMax)
		setInt(&p.RecipeMaxDays, w.RecipeMaxDays)
		setInt(&p.RecipeWindowMax, w.RecipeWindowMax)
	}
	for key, gap := range f.MIPGap {
		v, err := domain.ParseVariant(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("mip_gap.%s: %w", key, err))
			continue
		}
		p.MIPGap[v] = gap
	}
	for key, mode := range f.WeeklyCapMode {
		v, err := domain.ParseVariant(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("weekly_cap_mode.%s: %w", key, err))
			continue
		}
		p.WeeklyCaps[v] = WeeklyCapMode(mode)
	}
	setFloat(&p.ReportThreshold, f.ReportThreshold)
	return errs
}

func parseSlugs(path string, slugs []string) ([]domain.Category, []error) {
	var (
		out  []domain.Category
		errs []error
	)
	for _, s := range slugs {
		c, err := domain.ParseCategorySlug(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		out = append(out, c)
	}
	return out, errs
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
