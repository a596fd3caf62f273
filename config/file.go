// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gysr-io/core-go/gysr"
)

type fileEntry struct {
	Key       string `yaml:"key"`
	Recipient string `yaml:"recipient"`
	// Rate is a decimal string, e.g. "0.05" for a 5% fee.
	Rate string `yaml:"rate"`
}

type file struct {
	Entries []fileEntry `yaml:"entries"`
}

// LoadFile reads a registry from a YAML file. Rates are decimal strings
// converted to wad scale.
func LoadFile(path string) (*MemRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse reads a registry from YAML bytes.
func Parse(data []byte) (*MemRegistry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	reg := NewMemRegistry()
	for _, e := range f.Entries {
		if e.Key == "" {
			return nil, errors.New("config entry missing key")
		}
		var recipient gysr.Address
		if e.Recipient != "" {
			addr, err := gysr.ParseAddress(e.Recipient)
			if err != nil {
				return nil, errors.Wrapf(err, "config entry %q recipient", e.Key)
			}
			recipient = *addr
		}
		rate := decimal.Zero
		if e.Rate != "" {
			parsed, err := decimal.NewFromString(e.Rate)
			if err != nil {
				return nil, errors.Wrapf(err, "config entry %q rate", e.Key)
			}
			if parsed.IsNegative() {
				return nil, errors.Errorf("config entry %q rate is negative", e.Key)
			}
			rate = parsed
		}
		reg.Set(e.Key, recipient, rate.Shift(18).Truncate(0).BigInt())
	}
	return reg, nil
}
