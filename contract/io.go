package contract

import (
	"fmt"
	"os"

	"github.com/docloom/docloom/internal/yamlutil"
)

// Marshal serializes the contract to its YAML file form.
func (c *Contract) Marshal() ([]byte, error) {
	data, err := yamlutil.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("serializing contract: %w", err)
	}
	return data, nil
}

// Parse loads a contract from its YAML file form and validates its
// invariants.
func Parse(data []byte) (*Contract, error) {
	c := New()
	if err := yamlutil.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing contract: %w", err)
	}
	// Maps elided from a hand-edited file must still be usable.
	if c.ParagraphStyles == nil {
		c.ParagraphStyles = make(map[string]ParagraphStyleMapping)
	}
	if c.CharacterStyles == nil {
		c.CharacterStyles = make(map[string]CharacterStyleMapping)
	}
	if c.Anchors == nil {
		c.Anchors = make(map[string]AnchorMapping)
	}
	if c.TableStyles == nil {
		c.TableStyles = make(map[string]TableStyleMapping)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid contract: %w", err)
	}
	return c, nil
}

// Save writes the contract to a file.
func (c *Contract) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing contract: %w", err)
	}
	return nil
}

// Load reads and validates a contract file.
func Load(path string) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contract: %w", err)
	}
	return Parse(data)
}
