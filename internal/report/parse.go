package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexanderramin/climbdiet/internal/diet"
	"github.com/alexanderramin/climbdiet/internal/domain"
)

// Menu is a report read back into day, slot and food grams.
type Menu struct {
	Days    []MenuDay
	Cost    float64
	HasCost bool
}

// MenuDay holds the slots of one day in the order they were read.
type MenuDay struct {
	Number int
	Slots  []MenuSlot
}

// MenuSlot collects recipe names and every portion listed under a slot,
// recipe ingredients and extras alike.
type MenuSlot struct {
	Slot    domain.Slot
	Recipes []string
	Foods   []diet.Portion
}

// Day returns day n, or nil.
func (m *Menu) Day(n int) *MenuDay {
	for i := range m.Days {
		if m.Days[i].Number == n {
			return &m.Days[i]
		}
	}
	return nil
}

// Grams sums what the menu lists of food in a slot of day n.
func (m *Menu) Grams(n int, slot domain.Slot, food string) float64 {
	d := m.Day(n)
	if d == nil {
		return 0
	}
	var total float64
	for _, s := range d.Slots {
		if s.Slot != slot {
			continue
		}
		for _, p := range s.Foods {
			if p.Food == food {
				total += p.Grams
			}
		}
	}
	return total
}

var (
	dayLine  = regexp.MustCompile(`^Día:\s*(\d+)$`)
	costLine = regexp.MustCompile(`^Coste total:\s*([\d.]+)\s*€$`)
	slotLine = regexp.MustCompile(`^(\S+?)( extra)?:\s*(.*)$`)
	foodLine = regexp.MustCompile(`^(.+?):\s*([\d.]+)\s*g$`)
)

// Parse reads a report. Foods listed before any day header belong to day 1,
// and foods listed before any slot header belong to the whole day.
func Parse(r io.Reader) (*Menu, error) {
	p := &parser{menu: &Menu{}}
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if err := p.line(strings.TrimSpace(sc.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return p.menu, nil
}

type parser struct {
	menu *Menu
	day  *MenuDay
	slot *MenuSlot
}

func (p *parser) line(s string) error {
	if s == "" || s == Header {
		return nil
	}
	if m := dayLine.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return fmt.Errorf("day number %q: %w", m[1], err)
		}
		p.menu.Days = append(p.menu.Days, MenuDay{Number: n})
		p.day = &p.menu.Days[len(p.menu.Days)-1]
		p.slot = nil
		return nil
	}
	if m := costLine.FindStringSubmatch(s); m != nil {
		cost, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return fmt.Errorf("cost %q: %w", m[1], err)
		}
		p.menu.Cost, p.menu.HasCost = cost, true
		return nil
	}

	if item, ok := strings.CutPrefix(s, "- "); ok {
		return p.food(item)
	}
	if m := slotLine.FindStringSubmatch(s); m != nil {
		if slot, err := domain.ParseSlot(m[1]); err == nil && !foodLine.MatchString(s) {
			p.enter(slot)
			if name := m[3]; name != "" && m[2] == "" {
				p.slot.Recipes = append(p.slot.Recipes, name)
			}
			return nil
		}
	}
	return p.food(s)
}

func (p *parser) food(s string) error {
	m := foodLine.FindStringSubmatch(s)
	if m == nil {
		return fmt.Errorf("unrecognised line %q", s)
	}
	g, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return fmt.Errorf("grams of %s %q: %w", m[1], m[2], err)
	}
	if p.slot == nil {
		p.enter(domain.SlotDay)
	}
	p.slot.Foods = append(p.slot.Foods, diet.Portion{Food: m[1], Grams: g})
	return nil
}

// enter makes slot current on the current day, reusing an earlier block for
// the same slot so a recipe and its extras end up together.
func (p *parser) enter(slot domain.Slot) {
	if p.day == nil {
		p.menu.Days = append(p.menu.Days, MenuDay{Number: 1})
		p.day = &p.menu.Days[len(p.menu.Days)-1]
	}
	for i := range p.day.Slots {
		if p.day.Slots[i].Slot == slot {
			p.slot = &p.day.Slots[i]
			return
		}
	}
	p.day.Slots = append(p.day.Slots, MenuSlot{Slot: slot})
	p.slot = &p.day.Slots[len(p.day.Slots)-1]
}
