package core

// TriggerDriver starts the sensor trigger output. After StartTrigger the
// output runs without software intervention.
type TriggerDriver interface {
	StartTrigger(cfg TriggerConfig) error
}

// Global singleton used by core code.
var triggerDriver TriggerDriver

// SetTriggerDriver is called by target-specific code to register its driver.
func SetTriggerDriver(d TriggerDriver) {
	triggerDriver = d
}

// MustTrigger returns the configured driver or panics if missing.
func MustTrigger() TriggerDriver {
	if triggerDriver == nil {
		panic("trigger driver not configured")
	}
	return triggerDriver
}

// Board bundles the drivers one ranging pipeline runs on
type Board struct {
	Echo    EchoDriver
	Counter CaptureCounter
	LEDs    LEDDriver
	Serial  SerialDriver
	Trigger TriggerDriver
}

// RegisteredBoard collects the drivers registered by target code
func RegisteredBoard() Board {
	return Board{
		Echo:    MustEcho(),
		Counter: MustCounter(),
		LEDs:    MustLED(),
		Serial:  MustSerial(),
		Trigger: MustTrigger(),
	}
}
