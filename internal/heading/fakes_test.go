package heading_test

import "errors"

var errSensor = errors.New("encoder unplugged")

type fakeMotor struct {
	duties []float64
	err    error
}

func (m *fakeMotor) Set(duty float64) error {
	if m.err != nil {
		return m.err
	}
	m.duties = append(m.duties, duty)
	return nil
}

func (m *fakeMotor) last() float64 {
	if len(m.duties) == 0 {
		return 0
	}
	return m.duties[len(m.duties)-1]
}

type fakeSensor struct {
	pos   float64
	err   error
	reads int
}

func (s *fakeSensor) Read() (float64, error) {
	s.reads++
	if s.err != nil {
		return 0, s.err
	}
	return s.pos, nil
}

type sample struct {
	label string
	value float64
}

type fakeSink struct {
	samples []sample
}

func (s *fakeSink) Publish(label string, value float64) {
	s.samples = append(s.samples, sample{label, value})
}
