package vkontakte

import (
	"strconv"
	"strings"
)

var cities = map[string]int{
	"москва":          1,
	"санкт-петербург": 2,
	"казань":          60,
	"ростов-на-дону":  119,
	"махачкала":       85,
	"екатеринбург":    49,
	"новосибирск":     99,
	"норильск":        102,
	"владивосток":     37,
	"якутск":          168,
}

// CityID resolves a city given either as a numeric id or as a known city name.
func CityID(city string) (int, bool) {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return 0, false
	}

	if id, err := strconv.Atoi(city); err == nil {
		return id, id > 0
	}

	id, ok := cities[city]
	return id, ok
}
