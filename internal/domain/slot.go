package domain

import (
	"fmt"
	"strings"
)

// Slot is a meal period of the day. SlotDay stands for the whole day when a
// formulation does not split meals.
type Slot int

const (
	SlotDay Slot = iota
	SlotBreakfast
	SlotLunch
	SlotSnack
	SlotDinner
)

// MealSlots are the four meal periods in serving order.
var MealSlots = []Slot{SlotBreakfast, SlotLunch, SlotSnack, SlotDinner}

var slotNames = map[Slot]string{
	SlotDay:       "día",
	SlotBreakfast: "desayuno",
	SlotLunch:     "comida",
	SlotSnack:     "merienda",
	SlotDinner:    "cena",
}

// ParseSlot resolves a catalog slot key such as "desayuno".
func ParseSlot(name string) (Slot, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s, n := range slotNames {
		if s != SlotDay && n == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown slot %q", name)
}

// LookupSlot resolves any slot name, including "día".
func LookupSlot(name string) (Slot, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == slotNames[SlotDay] {
		return SlotDay, nil
	}
	return ParseSlot(key)
}

func (s Slot) String() string {
	if n, ok := slotNames[s]; ok {
		return n
	}
	return fmt.Sprintf("slot_%d", int(s))
}

// Title is the capitalised display name used in reports ("Desayuno").
func (s Slot) Title() string {
	n := s.String()
	if n == "" {
		return n
	}
	r := []rune(n)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
