package ipu

import "fmt"

// Command is an outlet control action understood by the firmware's
// control_outlet endpoint.
type Command int

const (
	CommandOn    Command = 0
	CommandOff   Command = 1
	CommandCycle Command = 2 // off, firmware-configured delay, on
)

// String returns the lowercase action name.
func (c Command) String() string {
	switch c {
	case CommandOn:
		return "on"
	case CommandOff:
		return "off"
	case CommandCycle:
		return "cycle"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// ParseCommand converts an action name ("on", "off", "cycle") to a Command.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "on":
		return CommandOn, nil
	case "off":
		return CommandOff, nil
	case "cycle":
		return CommandCycle, nil
	default:
		return 0, &ValidationError{Field: "action", Reason: fmt.Sprintf("unknown action %q (valid: on, off, cycle)", s)}
	}
}

// OutletState is the power state the device reports for one outlet.
type OutletState string

const (
	OutletOn  OutletState = "on"
	OutletOff OutletState = "off"
)

// Outlet is one switchable socket on the PDU.
type Outlet struct {
	Index int         `json:"index"` // 1-based, matching the front panel
	State OutletState `json:"state"`
	Name  string      `json:"name,omitempty"` // label from the outlet config page, when known
}

// Status is the device health snapshot served by status.xml.
// VoltageVolts is 0 on firmware whose status page carries no voltage
// element; use the UDP query channel for a guaranteed voltage reading.
type Status struct {
	CurrentAmps     float64       `json:"current_amps"`
	VoltageVolts    int           `json:"voltage_volts,omitempty"`
	TempCelsius     int           `json:"temp_celsius"`
	HumidityPercent int           `json:"humidity_percent"`
	Alarm           string        `json:"alarm"` // "normal" unless the firmware raised a warning
	OutletStates    []OutletState `json:"outlet_states"`
}

// Telemetry is a voltage/current reading. Outlet is 0 for the whole bank,
// otherwise the 1-based outlet the current reading belongs to. Voltage is
// always the bank voltage; the device has a single feed.
type Telemetry struct {
	Outlet       int     `json:"outlet,omitempty"`
	VoltageVolts int     `json:"voltage_volts"`
	CurrentAmps  float64 `json:"current_amps"`
}

// OutletConfig is the per-outlet configuration from config_PDU.htm.
type OutletConfig struct {
	Name         string `json:"name"`
	TurnOnDelay  int    `json:"turn_on_delay"`  // seconds
	TurnOffDelay int    `json:"turn_off_delay"` // seconds
}

// Thresholds is the alarm configuration from config_threshold.htm.
type Thresholds struct {
	WarningAmps            float64 `json:"warning_amps"`
	OverloadAmps           float64 `json:"overload_amps"`
	WarningVolts           int     `json:"warning_volts"`
	OverloadVolts          int     `json:"overload_volts"`
	WarningTempUnderC      int     `json:"warning_temp_under_c"`
	WarningTempOverC       int     `json:"warning_temp_over_c"`
	WarningHumidityPercent int     `json:"warning_humidity_percent"`
}

// NetworkConfig is the device network identity from config_network.htm plus
// the management credentials from config_user.htm.
type NetworkConfig struct {
	IP       string `json:"ip"`
	Mask     string `json:"mask"`
	Gateway  string `json:"gateway"`
	DNS      string `json:"dns,omitempty"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// Snapshot bundles the pages a monitoring pass usually wants, fetched
// concurrently by Client.Snapshot.
type Snapshot struct {
	Status        Status         `json:"status"`
	OutletConfigs []OutletConfig `json:"outlet_configs"`
	Thresholds    Thresholds     `json:"thresholds"`
}
