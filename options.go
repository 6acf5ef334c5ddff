package rhi

// DeviceOption configures a Device during creation.
//
// Example:
//
//	dev, err := rhi.NewDevice(adapter, rhi.WithDeviceLabel("three-cubes"))
type DeviceOption func(*deviceOptions)

// deviceOptions holds optional configuration for Device creation.
type deviceOptions struct {
	label string
}

// defaultDeviceOptions returns the default device options.
func defaultDeviceOptions() deviceOptions {
	return deviceOptions{
		label: "rhi",
	}
}

// WithDeviceLabel sets the label used to prefix backend debug names of
// resources created by the device.
func WithDeviceLabel(label string) DeviceOption {
	return func(o *deviceOptions) {
		o.label = label
	}
}
