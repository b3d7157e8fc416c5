package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(int)   { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"things-a", PhaseThings, &log})
	r.Register(recorder{"pre", PhasePreTick, &log})
	r.Register(recorder{"things-b", PhaseThings, &log})

	r.Tick(1)
	assert.Equal(t, []string{"pre", "things-a", "things-b", "cleanup"}, log)
}
