// Package stealth paces browser interactions so a run resembles a human
// session instead of a scripted one.
package stealth

import (
	"math/rand"
	"time"

	"github.com/go-rod/rod"
)

// SleepRandom blocks for a uniformly random interval in [minMs, maxMs].
func SleepRandom(minMs, maxMs int) {
	if maxMs <= minMs {
		time.Sleep(time.Duration(minMs) * time.Millisecond)
		return
	}
	d := minMs + rand.Intn(maxMs-minMs+1)
	time.Sleep(time.Duration(d) * time.Millisecond)
}

// SleepGaussian blocks for a normally distributed interval, clamped to stay
// positive.
func SleepGaussian(meanMs, stdDevMs int) {
	d := float64(meanMs) + rand.NormFloat64()*float64(stdDevMs)
	if d < 50 {
		d = 50
	}
	time.Sleep(time.Duration(d) * time.Millisecond)
}

// ThinkTime simulates a reading pause before the next action.
func ThinkTime() { SleepGaussian(1400, 600) }

// ClickHumanLike hovers the element, hesitates briefly, then clicks.
func ClickHumanLike(el *rod.Element) error {
	if err := el.Hover(); err != nil {
		return err
	}
	SleepGaussian(350, 150)
	return el.Click("left", 1)
}

// TypeHumanLike enters text in small bursts with variable pauses, the way a
// person types, instead of injecting the whole string at once.
func TypeHumanLike(el *rod.Element, text string) error {
	if err := el.Click("left", 1); err != nil {
		return err
	}
	runes := []rune(text)
	for i := 0; i < len(runes); {
		n := 1 + rand.Intn(4)
		if i+n > len(runes) {
			n = len(runes) - i
		}
		if err := el.Input(string(runes[i : i+n])); err != nil {
			return err
		}
		i += n
		SleepGaussian(90, 40)
	}
	return nil
}

// ScrollHumanLike scrolls the page down in a few uneven steps.
func ScrollHumanLike(p *rod.Page) {
	steps := 2 + rand.Intn(3)
	for i := 0; i < steps; i++ {
		_ = p.Mouse.Scroll(0, float64(200+rand.Intn(400)), 1+rand.Intn(3))
		SleepGaussian(500, 200)
	}
}

// InActiveWindow reports whether the local time falls inside the configured
// active-hours window (both "15:04" strings). Malformed bounds count as
// always active.
func InActiveWindow(start, end string) bool {
	st, err1 := time.Parse("15:04", start)
	en, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		return true
	}
	now := time.Now()
	cur := now.Hour()*60 + now.Minute()
	s := st.Hour()*60 + st.Minute()
	e := en.Hour()*60 + en.Minute()
	if s <= e {
		return cur >= s && cur <= e
	}
	// window crosses midnight
	return cur >= s || cur <= e
}
