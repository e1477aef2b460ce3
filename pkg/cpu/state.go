package cpu

import (
	"encoding/json"
	"fmt"
	"io"
)

// machineState is the JSON-serialisable snapshot of the machine. The program
// itself is not included; it is rebuilt from the listing.
type machineState struct {
	A      int16            `json:"a"`
	B      int16            `json:"b"`
	PC     int              `json:"pc"`
	Cmp    int              `json:"cmp"`
	Halted bool             `json:"halted"`
	Steps  int              `json:"steps"`
	Reads  int              `json:"reads"`
	Writes int              `json:"writes"`
	Memory map[string]int16 `json:"memory"`
}

// WriteState writes the machine state as indented JSON.
func (c *CPU) WriteState(w io.Writer) error {
	state := machineState{
		A:      c.Regs[RegA],
		B:      c.Regs[RegB],
		PC:     c.PC,
		Cmp:    c.Cmp,
		Halted: c.Halted,
		Steps:  c.Steps,
		Reads:  c.Reads,
		Writes: c.Writes,
		Memory: c.Memory,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal machine state: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// RestoreState applies a snapshot produced by WriteState. Cells missing from
// the snapshot are dropped; the reserved cells are always present afterwards.
func (c *CPU) RestoreState(r io.Reader) error {
	var state machineState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("unmarshal machine state: %w", err)
	}
	c.Reset()
	c.Regs[RegA], c.Regs[RegB] = state.A, state.B
	c.PC = state.PC
	c.Cmp = state.Cmp
	c.Halted = state.Halted
	c.Steps, c.Reads, c.Writes = state.Steps, state.Reads, state.Writes
	for name, v := range state.Memory {
		c.Memory[name] = v
	}
	return nil
}
