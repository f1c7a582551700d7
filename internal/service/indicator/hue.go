package indicator

import (
	"fmt"
	"sync"

	"github.com/amimof/huego"
)

// HueConfig selects the bridge, light and color of a Hue indicator.
type HueConfig struct {
	Bridge     string
	User       string
	LightId    int
	Brightness uint8
	Hue        uint16
	Saturation uint8
}

type lightStateSetter interface {
	SetLightState(id int, state huego.State) (*huego.Response, error)
}

// Hue is a Light backed by a Philips Hue bridge. It only talks to the bridge
// when the requested state differs from the last one it set.
type Hue struct {
	conf   HueConfig
	bridge lightStateSetter
	mutex  sync.Mutex
	known  bool
	on     bool
}

// NewHue creates a Hue light talking to the configured bridge.
func NewHue(conf HueConfig) *Hue {
	return &Hue{
		conf:   conf,
		bridge: huego.New(conf.Bridge, conf.User),
	}
}

// Set switches the light, using the configured color when on.
func (h *Hue) Set(on bool) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.known && h.on == on {
		return nil
	}

	state := huego.State{On: false}
	if on {
		state = huego.State{
			On:  true,
			Bri: h.conf.Brightness,
			Hue: h.conf.Hue,
			Sat: h.conf.Saturation,
		}
	}

	if _, err := h.bridge.SetLightState(h.conf.LightId, state); err != nil {
		h.known = false
		return fmt.Errorf("cannot switch hue light #%d to on=%v: %w", h.conf.LightId, on, err)
	}
	h.known = true
	h.on = on
	return nil
}
