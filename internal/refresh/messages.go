package refresh

import (
	"errors"

	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/permission"
)

// Messages holds every user-visible text of the screen.
type Messages struct {
	CoordinatesUnavailable string
	GeocoderUnavailable    string
	InvalidCoordinates     string
	NoAddressFound         string
	FetchFailed            string
	Updated                string
	PermissionDenied       string
	ServicesUnavailable    string

	// Location settings dialog.
	SettingsTitle   string
	SettingsMessage string
	SettingsConfirm string
	SettingsCancel  string

	// Interactive prompts; %s is the scope or source name.
	PermissionPrompt string
	SwitchPrompt     string
}

var catalogs = map[string]Messages{
	"en": {
		CoordinatesUnavailable: "Unable to get latitude and longitude.",
		GeocoderUnavailable:    "The geocoder service is unavailable.",
		InvalidCoordinates:     "Invalid latitude or longitude.",
		NoAddressFound:         "No address found.",
		FetchFailed:            "Failed to fetch data.",
		Updated:                "Latest data updated!",
		PermissionDenied:       "Permission denied. Restart the app and allow the permission.",
		ServicesUnavailable:    "Location services are unavailable.",
		SettingsTitle:          "Location services disabled",
		SettingsMessage:        "Location services are off. Turn them on to use the app.",
		SettingsConfirm:        "Settings",
		SettingsCancel:         "Cancel",
		PermissionPrompt:       "Allow %s location access?",
		SwitchPrompt:           "Turn on %s location?",
	},
	"ko": {
		CoordinatesUnavailable: "위도, 경도 정보를 가져올 수 없습니다.",
		GeocoderUnavailable:    "지오코더 서비스를 이용불가 합니다.",
		InvalidCoordinates:     "잘못된 위도, 경도입니다.",
		NoAddressFound:         "주소가 발견되지 않았습니다.",
		FetchFailed:            "데이터를 가져오는 데 실패했습니다.",
		Updated:                "최신 데이터 업데이트 완료!",
		PermissionDenied:       "퍼미션이 거부되었습니다. 앱을 다시 실행하여 퍼미션을 허용해주세요.",
		ServicesUnavailable:    "위치 서비스를 사용할 수 없습니다.",
		SettingsTitle:          "위치 서비스 비활성화",
		SettingsMessage:        "위치 서비스가 꺼져있습니다. 설정해야 앱을 사용할 수 있습니다.",
		SettingsConfirm:        "설정",
		SettingsCancel:         "취소",
		PermissionPrompt:       "%s 위치 권한을 허용하시겠습니까?",
		SwitchPrompt:           "%s 위치를 켜시겠습니까?",
	},
}

// MessagesFor returns the catalog for locale, falling back to English.
func MessagesFor(locale string) Messages {
	if m, ok := catalogs[locale]; ok {
		return m
	}
	return catalogs["en"]
}

// ForError returns the notice text for a failure. Air quality fetch
// failures of every kind share one text.
func (m Messages) ForError(err error) string {
	switch {
	case errors.Is(err, location.ErrCoordinatesUnavailable):
		return m.CoordinatesUnavailable
	case errors.Is(err, geocode.ErrInvalidCoordinates):
		return m.InvalidCoordinates
	case errors.Is(err, geocode.ErrNoAddressFound):
		return m.NoAddressFound
	case errors.Is(err, geocode.ErrServiceUnavailable):
		return m.GeocoderUnavailable
	case errors.Is(err, permission.ErrPermissionDenied):
		return m.PermissionDenied
	case errors.Is(err, permission.ErrLocationServicesDisabled):
		return m.ServicesUnavailable
	default:
		return m.FetchFailed
	}
}
