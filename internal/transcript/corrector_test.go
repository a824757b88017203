package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrectorFixesMisheardNames(t *testing.T) {
	c := NewCorrector()

	assert.Equal(t, "Send 100 to niraj", c.Apply("Send 100 to Neeraj"))
	assert.Equal(t, "Pay 50 to rahul", c.Apply("Pay 50 to Rahool"))
	assert.Equal(t, "priya ko 20 bhejo", c.Apply("Pria ko 20 bhej do"))
}

func TestCorrectorDropsFillers(t *testing.T) {
	c := NewCorrector()
	assert.Equal(t, "send 100 to niraj", c.Apply("umm send 100 to neeraj"))
}

func TestCorrectorLeavesCleanTextAlone(t *testing.T) {
	c := NewCorrector()
	assert.Equal(t, "Pay 500 to Rahul", c.Apply("Pay 500 to Rahul"))
	assert.Equal(t, "What's my balance?", c.Apply("What's my balance?"))
}

func TestCorrectorIsIdempotent(t *testing.T) {
	c := NewCorrector()
	inputs := []string{
		"Send 100 to Neeraj",
		"Pria ko fiver hundered rupees bhej do",
		"umm pay thre thousend to Rahool",
		"What's my balance?",
	}
	for _, in := range inputs {
		once := c.Apply(in)
		assert.Equal(t, once, c.Apply(once), "input %q", in)
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"निराज को सौ रुपये भेजो", "hi"},
		{"Send ten rupees to Neeraj", "en"},
		{"kya", "hi"},
		{"balance kitna hai", "hi"},
		{"What is this?", "en"},
		{"Rahul ko 100 bhejo", "hi"},
		{"Show my transactions", "en"},
		{"mera naam kya hai?", "hi"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectLanguage(tc.text), "text %q", tc.text)
	}
}
