// Package catalog holds the shop's bookable offering: services with prices,
// barbers with their tier, and the ordered list of hour slots. The table is
// data, not control flow, so adding a service or barber needs no code change.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Tier classifies a barber. Apprentices book without the payment gate.
type Tier string

const (
	TierBarber     Tier = "barber"
	TierApprentice Tier = "apprentice"
)

// SlotLayout is the time-of-day format used by every slot.
const SlotLayout = "15:04"

// Service is a bookable service with a fixed USD price.
type Service struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	// PriceFrom marks prices that are a starting point ("desde").
	PriceFrom bool `json:"price_from,omitempty"`
}

// Barber is a selectable barber.
type Barber struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Tier  Tier   `json:"tier"`
	// PriceCents, when set, replaces the service price for this barber.
	PriceCents *int `json:"price_cents,omitempty"`
}

// IsApprentice reports whether bookings with this barber skip the payment gate.
func (b Barber) IsApprentice() bool {
	return b.Tier == TierApprentice
}

// DisplayLabel returns the label shown in the form, falling back to the name.
func (b Barber) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	return b.Name
}

// Catalog is the full configuration table.
type Catalog struct {
	Services []Service `json:"services"`
	Barbers  []Barber  `json:"barbers"`
	Slots    []string  `json:"slots"`
}

var (
	ErrUnknownService = errors.New("catalog: unknown service")
	ErrUnknownBarber  = errors.New("catalog: unknown barber")
	ErrUnknownSlot    = errors.New("catalog: unknown time slot")
)

func intPtr(v int) *int { return &v }

// Default returns the shop's standard offering.
func Default() *Catalog {
	return &Catalog{
		Services: []Service{
			{ID: "cejas", Name: "Perfil de cejas con guillet y gel de afeitar", PriceCents: 100},
			{ID: "barba", Name: "Afeitado o Perfilación de barba", PriceCents: 300},
			{ID: "corte-maquina", Name: "Corte Clásico con máquina", PriceCents: 500},
			{ID: "corte-tijera", Name: "Corte Clásico tijera", PriceCents: 500},
			{ID: "freestyle", Name: "Freestyle (diseño personalizado)", PriceCents: 700},
			{ID: "semi-ondulado", Name: "Semi Ondulado (ondas)", PriceCents: 2000, PriceFrom: true},
			{ID: "vip", Name: "VIP: Corte + Barba + Cejas + bebida de cortesía", PriceCents: 800},
		},
		Barbers: []Barber{
			{ID: "josue", Name: "Josué", Label: "💈 Josué", Tier: TierBarber},
			{ID: "ariel", Name: "Ariel", Label: "💈 Ariel", Tier: TierBarber},
			{ID: "aprendiz", Name: "Aprendiz", Label: "Aprendiz (Mario)", Tier: TierApprentice, PriceCents: intPtr(200)},
		},
		Slots: []string{
			"09:00", "10:00", "11:00", "12:00",
			"14:00", "15:00", "16:00", "17:00",
			"18:00", "19:00", "20:00",
		},
	}
}

// LoadFile reads a catalog from a JSON file. An empty path yields Default().
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the table is usable: non-empty sections, unique ids, parsable slots.
func (c *Catalog) Validate() error {
	if len(c.Services) == 0 {
		return errors.New("catalog: at least one service required")
	}
	if len(c.Barbers) == 0 {
		return errors.New("catalog: at least one barber required")
	}
	if len(c.Slots) == 0 {
		return errors.New("catalog: at least one slot required")
	}
	seen := make(map[string]struct{})
	for _, s := range c.Services {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("catalog: service %q needs id and name", s.ID)
		}
		if s.PriceCents < 0 {
			return fmt.Errorf("catalog: service %q has negative price", s.ID)
		}
		if _, dup := seen["s:"+s.ID]; dup {
			return fmt.Errorf("catalog: duplicate service id %q", s.ID)
		}
		seen["s:"+s.ID] = struct{}{}
	}
	for _, b := range c.Barbers {
		if b.ID == "" || b.Name == "" {
			return fmt.Errorf("catalog: barber %q needs id and name", b.ID)
		}
		if b.Tier != TierBarber && b.Tier != TierApprentice {
			return fmt.Errorf("catalog: barber %q has unknown tier %q", b.ID, b.Tier)
		}
		if b.PriceCents != nil && *b.PriceCents < 0 {
			return fmt.Errorf("catalog: barber %q has negative price", b.ID)
		}
		if _, dup := seen["b:"+b.ID]; dup {
			return fmt.Errorf("catalog: duplicate barber id %q", b.ID)
		}
		seen["b:"+b.ID] = struct{}{}
	}
	for _, slot := range c.Slots {
		if _, err := time.Parse(SlotLayout, slot); err != nil {
			return fmt.Errorf("catalog: invalid slot %q: %w", slot, err)
		}
	}
	return nil
}

// Service finds a service by id or name (case-insensitive).
func (c *Catalog) Service(key string) (Service, error) {
	key = normalize(key)
	for _, s := range c.Services {
		if normalize(s.ID) == key || normalize(s.Name) == key {
			return s, nil
		}
	}
	return Service{}, fmt.Errorf("%w: %q", ErrUnknownService, key)
}

// Barber finds a barber by id, name, or label (case-insensitive).
func (c *Catalog) Barber(key string) (Barber, error) {
	key = normalize(key)
	for _, b := range c.Barbers {
		if normalize(b.ID) == key || normalize(b.Name) == key || (b.Label != "" && normalize(b.Label) == key) {
			return b, nil
		}
	}
	return Barber{}, fmt.Errorf("%w: %q", ErrUnknownBarber, key)
}

// Slot returns the time of day for a permitted slot.
func (c *Catalog) Slot(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, slot := range c.Slots {
		if slot == value {
			return time.Parse(SlotLayout, slot)
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownSlot, value)
}

// PriceCents returns the price of service when booked with barber.
func (c *Catalog) PriceCents(service Service, barber Barber) int {
	if barber.PriceCents != nil {
		return *barber.PriceCents
	}
	return service.PriceCents
}

// FormatUSD renders cents as "5.00 USD".
func FormatUSD(cents int) string {
	return fmt.Sprintf("%d.%02d USD", cents/100, cents%100)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
