package cmd

import (
	"context"
	"strings"
	"time"

	globalConfig "github.com/slaxmankiran/aitravel-app-sub008/config"
	"github.com/slaxmankiran/aitravel-app-sub008/ui/websocket"
	"github.com/sirupsen/logrus"
)

// notifyWebsocket puentea el progreso del planner hacia el hub. El envío es
// no bloqueante: si el hub está ocupado el evento se descarta en lugar de
// frenar al worker de generación.
func notifyWebsocket(code string, tripID string, payload any) {
	msg := websocket.BroadcastMessage{
		Code:    code,
		Message: "Planner event",
		TripID:  tripID,
		Result:  payload,
	}
	select {
	case websocket.Broadcast <- msg:
	default:
		logrus.Debugf("[WS] dropped %s event for trip %s (hub busy)", code, tripID)
	}
}

// startCacheFlushLoop barre entradas caducadas de las cachés de rutas e
// imágenes en el mismo intervalo que el sweep del tracker. La expiración ya
// es perezosa en cada lectura; esto solo recupera memoria de claves frías.
func startCacheFlushLoop(ctx context.Context) {
	interval := globalConfig.SpecSweepInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := directionsUsecase.FlushCache() + imageryUsecase.FlushCache()
				if removed > 0 {
					logrus.Debugf("[CACHE] flushed %d expired lookup entries", removed)
				}
			}
		}
	}()
}

// parseBasicAuthAccounts convierte user:pass[,user2:pass2] en el mapa que
// espera el middleware de fiber.
func parseBasicAuthAccounts(credentials []string) map[string]string {
	account := make(map[string]string)
	for _, credential := range credentials {
		ba := strings.Split(credential, ":")
		if len(ba) != 2 {
			logrus.Fatalln("Basic auth is not valid, please use the following format <user>:<secret>")
		}
		account[ba[0]] = ba[1]
	}
	return account
}
