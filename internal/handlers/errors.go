package handlers

import (
	"net/http"

	"todolists/internal/logger"
)

// respondWithError writes userMsg with status and logs err, if any, under logMsg.
// Server errors are logged at error level, client errors at warn.
func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		l := log.WithError(err).WithFields("status", status)
		if status >= http.StatusInternalServerError {
			l.Error(logMsg)
		} else {
			l.Warn(logMsg)
		}
	}

	http.Error(w, userMsg, status)
}
