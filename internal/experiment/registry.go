package experiment

import (
	"fmt"

	"github.com/rcjetpilot/rotors-simulator/internal/integrators"
	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

var integratorFactories = map[string]func() world.Integrator{
	"euler": func() world.Integrator { return integrators.NewEuler() },
	"rk4":   func() world.Integrator { return integrators.NewRK4() },
}

func GetIntegrator(name string) (world.Integrator, error) {
	fn, ok := integratorFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func ListIntegrators() []string {
	names := make([]string, 0, len(integratorFactories))
	for name := range integratorFactories {
		names = append(names, name)
	}
	return names
}
