package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
)

type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var codes = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusNotFound:            "not_found",
	http.StatusConflict:            "conflict",
	http.StatusServiceUnavailable:  "unavailable",
	http.StatusInternalServerError: "internal",
}

// JSON кодирует ответ целиком до записи заголовков, поэтому ошибка
// кодирования все равно дает чистый 500.
func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		code = http.StatusInternalServerError
		buf.Reset()
		json.NewEncoder(&buf).Encode(ErrorBody{Error: "failed to encode response", Code: codes[code]})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	c, ok := codes[code]
	if !ok {
		c = "error"
	}
	JSON(w, r, code, ErrorBody{Error: message, Code: c})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
