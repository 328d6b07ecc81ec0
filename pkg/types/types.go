package types

// AdjustmentKind names one of the fixed visual adjustments an edit can carry.
type AdjustmentKind string

const (
	Brightness AdjustmentKind = "brightness"
	Contrast   AdjustmentKind = "contrast"
	Saturation AdjustmentKind = "saturation"
	Blur       AdjustmentKind = "blur"
	Sepia      AdjustmentKind = "sepia"
	Grayscale  AdjustmentKind = "grayscale"
	Invert     AdjustmentKind = "invert"
	HueRotate  AdjustmentKind = "hueRotate"
)

// AdjustmentKinds lists every kind in display order.
var AdjustmentKinds = []AdjustmentKind{
	Brightness,
	Contrast,
	Saturation,
	Blur,
	Sepia,
	Grayscale,
	Invert,
	HueRotate,
}

// Valid reports whether k belongs to the fixed enumeration.
func (k AdjustmentKind) Valid() bool {
	for _, known := range AdjustmentKinds {
		if k == known {
			return true
		}
	}
	return false
}

type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

type ExportFormat string

const (
	ExportFormatWebM ExportFormat = "webm"
	ExportFormatMP4  ExportFormat = "mp4"
)
