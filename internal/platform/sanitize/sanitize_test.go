package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Presentation for client", Text("  <b>Presentation</b> for client<script>alert(1)</script> "))
	assert.Equal(t, "R&D meeting", Text("R&D meeting"))
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))
	blank := "  <br> "
	assert.Nil(t, OptionalText(&blank))
	v := "bring charger"
	assert.Equal(t, "bring charger", *OptionalText(&v))
}

func TestSearch(t *testing.T) {
	assert.Equal(t, "proj", Search("  PROJ "))
	// 全角英数字は半角へ
	assert.Equal(t, "ast000007", Search("ＡＳＴ０００００７"))
	assert.Equal(t, `100\%\_off\\x`, Search(`100%_off\x`))
}
