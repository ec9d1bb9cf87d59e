// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reformat

import (
	"fmt"
	"sync"

	"github.com/longbridgeapp/opencc"
)

// Converter translates text between Simplified and Traditional Chinese.
type Converter interface {
	ToTraditional(text string) (string, error)
	ToSimplified(text string) (string, error)
}

// # OpenCC

// OpenCC is the dictionary-backed [Converter] used in production.
type OpenCC struct {
	mu          sync.Mutex
	traditional *opencc.OpenCC
	simplified  *opencc.OpenCC
}

// NewOpenCC loads the s2t and t2s dictionaries.
func NewOpenCC() (*OpenCC, error) {
	traditional, err := opencc.New("s2t")
	if err != nil {
		return nil, fmt.Errorf("opencc: failed to load s2t dictionary: %w", err)
	}

	simplified, err := opencc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("opencc: failed to load t2s dictionary: %w", err)
	}

	return &OpenCC{traditional: traditional, simplified: simplified}, nil
}

// ToTraditional converts Simplified text to Traditional.
func (c *OpenCC) ToTraditional(text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	converted, err := c.traditional.Convert(text)
	if err != nil {
		return "", fmt.Errorf("opencc: s2t conversion failed: %w", err)
	}
	return converted, nil
}

// ToSimplified converts Traditional text to Simplified.
func (c *OpenCC) ToSimplified(text string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	converted, err := c.simplified.Convert(text)
	if err != nil {
		return "", fmt.Errorf("opencc: t2s conversion failed: %w", err)
	}
	return converted, nil
}

// identityConverter leaves text untouched.
type identityConverter struct{}

func (identityConverter) ToTraditional(text string) (string, error) { return text, nil }
func (identityConverter) ToSimplified(text string) (string, error)  { return text, nil }
