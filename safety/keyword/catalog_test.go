package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalogSeveritySets(t *testing.T) {
	assert := assert.New(t)

	c := DefaultCatalog()
	assert.NotEmpty(c.Version)

	for _, kw := range []string{"kill yourself", "kys", "bomb", "terrorist"} {
		assert.True(c.IsCritical(kw), kw)
	}
	assert.True(c.IsCritical("KYS"))
	assert.False(c.IsCritical("stupid"))
	assert.True(c.IsHighSeverity("subhuman"))
	assert.False(c.IsHighSeverity("bomb"))
}

func TestContainsCriticalKeyword(t *testing.T) {
	assert := assert.New(t)

	c := DefaultCatalog()
	assert.True(c.ContainsCriticalKeyword("just KYS already"))
	assert.True(c.ContainsCriticalKeyword("there is a b.o.m.b here"))
	assert.False(c.ContainsCriticalKeyword("have a lovely day"))
}

func TestContainsPersonalInfo(t *testing.T) {
	assert := assert.New(t)

	hits := []string{
		"call me at 555-123-4567",
		"call me at 555.123.4567",
		"call me at 5551234567",
		"mail me: someone@example.com",
		"ssn is 123-45-6789",
		"card 4111 1111 1111 1111",
		"card 4111-1111-1111-1111",
		"I live at 123 Main Street",
		"here is my phone number",
	}
	for _, text := range hits {
		assert.True(ContainsPersonalInfo(text), text)
	}

	misses := []string{
		"totally ordinary whisper",
		"version 2.0.1 is out",
		"the year 2024 was wild",
	}
	for _, text := range misses {
		assert.False(ContainsPersonalInfo(text), text)
	}
}

func TestRepeatedCharRun(t *testing.T) {
	assert := assert.New(t)

	assert.True(HasRepeatedCharRun("amazingggg", 4))
	assert.False(HasRepeatedCharRun("amazing", 4))
	assert.False(HasRepeatedCharRun("", 4))
	assert.True(ContainsPunctuationRun("really???"))
	assert.False(ContainsPunctuationRun("really?"))
}

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  []string
	}{
		{text: "Hello, World!", out: []string{"hello", "world"}},
		{text: "préfix naïve", out: []string{"prefix", "naive"}},
		{text: "", out: []string{}},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.out, TokenizeText(fix.text))
	}
}

func TestSlugify(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("kys", Slugify("K.Y.S"))
	assert.Equal("buynow", Slugify("Buy Now!"))
}
