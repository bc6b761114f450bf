// Package cheats applies Game Genie and GameShark codes as read
// patches at the bus boundary: Game Genie codes intercept ROM reads,
// GameShark codes intercept external-RAM and WRAM reads. Codes are
// disabled until explicitly enabled by name.
package cheats

// Registry holds every loaded code of both kinds.
type Registry struct {
	genie []GameGenieCode
	shark []GameSharkCode
}

// NewRegistry returns an empty registry; PatchROM/PatchRAM are
// identity functions until codes are loaded and enabled.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddGameGenie parses and registers a Game Genie code under name.
func (r *Registry) AddGameGenie(code, name string) error {
	c, err := parseGameGenie(code)
	if err != nil {
		return err
	}
	c.Name = name
	r.genie = append(r.genie, c)
	return nil
}

// AddGameShark parses and registers a GameShark code under name.
func (r *Registry) AddGameShark(code, name string) error {
	c, err := parseGameShark(code)
	if err != nil {
		return err
	}
	c.Name = name
	r.shark = append(r.shark, c)
	return nil
}

// Enable switches on every code registered under name.
func (r *Registry) Enable(name string) {
	r.setEnabled(name, true)
}

// Disable switches off every code registered under name.
func (r *Registry) Disable(name string) {
	r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, v bool) {
	for i := range r.genie {
		if r.genie[i].Name == name {
			r.genie[i].Enabled = v
		}
	}
	for i := range r.shark {
		if r.shark[i].Name == name {
			r.shark[i].Enabled = v
		}
	}
}

// PatchROM filters a ROM read: an enabled Game Genie code matching
// addr whose old-data byte matches what the cartridge returned
// substitutes its replacement byte.
func (r *Registry) PatchROM(addr uint16, v uint8) uint8 {
	for i := range r.genie {
		c := &r.genie[i]
		if c.Enabled && c.Address == addr && c.OldData == v {
			return c.NewData
		}
	}
	return v
}

// PatchRAM filters an external-RAM or WRAM read: an enabled GameShark
// code matching addr substitutes its replacement byte.
func (r *Registry) PatchRAM(addr uint16, v uint8) uint8 {
	for i := range r.shark {
		c := &r.shark[i]
		if c.Enabled && c.Address == addr {
			return c.NewData
		}
	}
	return v
}
