package refresh_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giljurha/Airvisual/internal/airquality"
	"github.com/giljurha/Airvisual/internal/geocode"
	"github.com/giljurha/Airvisual/internal/location"
	"github.com/giljurha/Airvisual/internal/permission"
	"github.com/giljurha/Airvisual/internal/refresh"
)

func TestMessages_ForError(t *testing.T) {
	ko := refresh.MessagesFor("ko")

	tests := []struct {
		err  error
		want string
	}{
		{location.ErrCoordinatesUnavailable, "위도, 경도 정보를 가져올 수 없습니다."},
		{fmt.Errorf("lookup: %w", geocode.ErrServiceUnavailable), "지오코더 서비스를 이용불가 합니다."},
		{geocode.ErrInvalidCoordinates, "잘못된 위도, 경도입니다."},
		{geocode.ErrNoAddressFound, "주소가 발견되지 않았습니다."},
		{permission.ErrPermissionDenied, "퍼미션이 거부되었습니다. 앱을 다시 실행하여 퍼미션을 허용해주세요."},
		{permission.ErrLocationServicesDisabled, "위치 서비스를 사용할 수 없습니다."},
		{&airquality.FetchError{Kind: airquality.KindParse, Err: errors.New("x")}, "데이터를 가져오는 데 실패했습니다."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ko.ForError(tt.err), "%v", tt.err)
	}
}

func TestMessagesFor_FallsBackToEnglish(t *testing.T) {
	m := refresh.MessagesFor("de")
	assert.Equal(t, "Latest data updated!", m.Updated)
	assert.Equal(t, "Settings", m.SettingsConfirm)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "fetching_air_quality", refresh.StateFetchingAirQuality.String())
	assert.Equal(t, "closed", refresh.StateClosed.String())
	assert.Equal(t, "unknown", refresh.State(99).String())
}
