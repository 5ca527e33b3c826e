package utils

import (
	"fmt"

	pkgError "github.com/slaxmankiran/aitravel-app-sub008/pkg/error"
)

// ResponseData is the envelope every REST endpoint answers with. Status
// drives the HTTP status code only and is never serialized.
type ResponseData struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on a non-nil error so the recovery middleware can
// translate it. A "record not found" from the ORM is upgraded to a typed
// NotFoundError when the caller supplies a friendlier message.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if fmt.Sprintf("%s", err) == "record not found" && len(message) > 0 {
			panic(pkgError.NotFoundError(message[0]))
		}
		panic(err)
	}
}
