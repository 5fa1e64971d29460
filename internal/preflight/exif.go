package preflight

import (
	exif "github.com/dsoprea/go-exif/v3"
)

// Warning is one privacy finding from EXIF inspection.
type Warning struct {
	// Type classifies the finding ("exif_gps", "exif_serial", ...).
	Type string

	// Message describes the finding for display.
	Message string

	// Tag is the EXIF tag that triggered the finding.
	Tag string

	// Value is the tag's formatted value.
	Value string
}

// inspectEXIF scans image bytes for EXIF tags that disclose location,
// device identity, or authorship. Images without EXIF (or with EXIF the
// parser cannot read) yield no warnings; preflight never fails on
// metadata alone.
func inspectEXIF(data []byte) []Warning {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	warnings := make([]Warning, 0)
	for _, entry := range entries {
		tagName := entry.TagName
		value := entry.Formatted

		switch tagName {
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			warnings = append(warnings, Warning{
				Type:    "exif_gps",
				Message: "image contains GPS coordinates revealing where it was taken",
				Tag:     tagName,
				Value:   value,
			})
		case "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
			warnings = append(warnings, Warning{
				Type:    "exif_serial",
				Message: "image contains a device serial number",
				Tag:     tagName,
				Value:   value,
			})
		case "Artist", "Author", "Copyright", "XPAuthor":
			warnings = append(warnings, Warning{
				Type:    "exif_author",
				Message: "image contains author or copyright information",
				Tag:     tagName,
				Value:   value,
			})
		case "Make", "Model":
			warnings = append(warnings, Warning{
				Type:    "exif_camera",
				Message: "image contains camera make/model information",
				Tag:     tagName,
				Value:   value,
			})
		case "HostComputer":
			warnings = append(warnings, Warning{
				Type:    "exif_computer",
				Message: "image contains the name of the computer that processed it",
				Tag:     tagName,
				Value:   value,
			})
		}
	}
	return warnings
}

// Messages flattens warnings into display strings.
func Messages(warnings []Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Message+" ("+w.Tag+")")
	}
	return out
}
