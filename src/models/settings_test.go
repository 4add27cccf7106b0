package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayeeMapping(t *testing.T) {
	var m PayeeMapping
	_, ok := m.Lookup("bp")
	assert.False(t, ok)

	m2 := m.With(" bp ", "Fuel")
	c, ok := m2.Lookup("BP")
	assert.True(t, ok)
	assert.Equal(t, "Fuel", c)
	assert.Nil(t, m)
}

func TestSettingsClone(t *testing.T) {
	s := &Settings{AccountID: "a", Mapping: PayeeMapping{"BP": "Fuel"}, AccountTable: DefaultAccountTable()}
	c := s.Clone()
	c.Mapping["BP"] = "Other"
	c.AccountTable[0].Name = "Changed"

	assert.Equal(t, "Fuel", s.Mapping["BP"])
	assert.Equal(t, CategorySales, s.AccountTable[0].Name)

	var nilSettings *Settings
	assert.Nil(t, nilSettings.Clone())
}
