package garmin

import (
	"context"
	"fmt"
)

// DownloadFormat selects the binary representation of a downloaded
// activity. The format picks a different URL pattern, not just a query
// parameter.
type DownloadFormat int

const (
	// FormatOriginal is the uploaded file as a zip archive, usually
	// containing a FIT file. Extracting it is up to the caller.
	FormatOriginal DownloadFormat = iota
	FormatTCX
	FormatGPX
	FormatKML
	// FormatCSV is a CSV of the activity's splits.
	FormatCSV
)

// downloadPaths maps each format to its path template.
var downloadPaths = map[DownloadFormat]string{
	FormatOriginal: "/download-service/files/activity/%d",
	FormatTCX:      "/download-service/export/tcx/activity/%d",
	FormatGPX:      "/download-service/export/gpx/activity/%d",
	FormatKML:      "/download-service/export/kml/activity/%d",
	FormatCSV:      "/download-service/export/csv/activity/%d",
}

// Ext returns the file extension conventionally used for the format.
func (f DownloadFormat) Ext() string {
	switch f {
	case FormatOriginal:
		return ".zip"
	case FormatTCX:
		return ".tcx"
	case FormatGPX:
		return ".gpx"
	case FormatKML:
		return ".kml"
	case FormatCSV:
		return ".csv"
	default:
		return ""
	}
}

func (f DownloadFormat) String() string {
	switch f {
	case FormatOriginal:
		return "ORIGINAL"
	case FormatTCX:
		return "TCX"
	case FormatGPX:
		return "GPX"
	case FormatKML:
		return "KML"
	case FormatCSV:
		return "CSV"
	default:
		return fmt.Sprintf("DownloadFormat(%d)", int(f))
	}
}

// DownloadActivity fetches the activity in the requested format and
// returns the raw bytes unmodified. Writing them to storage is up to the
// caller.
func (c *Client) DownloadActivity(ctx context.Context, activityID int64, format DownloadFormat) ([]byte, error) {
	tmpl, ok := downloadPaths[format]
	if !ok {
		return nil, fmt.Errorf("unknown download format %v", format)
	}
	return c.download(ctx, fmt.Sprintf(tmpl, activityID))
}
