package quiz

import (
	"time"

	"github.com/mind-engage/mindengage-trainer/internal/grading"
	"github.com/mind-engage/mindengage-trainer/internal/logger"
)

type Option func(*config)

type config struct {
	now    func() time.Time
	rnd    Rand
	log    *logger.Logger
	grader grading.Grader
}

func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }
func WithRand(r Rand) Option                { return func(c *config) { c.rnd = r } }
func WithLogger(l *logger.Logger) Option    { return func(c *config) { c.log = l } }
func WithGrader(g grading.Grader) Option    { return func(c *config) { c.grader = g } }

func newConfig(opts []Option) config {
	c := config{now: time.Now, log: logger.Nop()}
	for _, o := range opts {
		o(&c)
	}
	if c.rnd == nil {
		c.rnd = NewRand()
	}
	if c.grader == nil {
		c.grader = grading.NewDefaultGrader()
	}
	return c
}
