package predict

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WsConn is the websocket part used by the stream handler
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

type wsHandler struct {
	data *ServiceData
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := logFor(r)
	l.Infof("ws request from %s", r.RemoteAddr)

	upgrader := websocket.Upgrader{CheckOrigin: h.data.checkOrigin}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an error code
		l.Error(errors.Wrap(err, "Can not init ws connection"))
		return
	}
	c.SetReadLimit(maxBodySize)
	h.data.handleConnection(r.Context(), c, l)
}

func (d *ServiceData) handleConnection(ctx context.Context, conn WsConn, l *logrus.Entry) {
	defer conn.Close()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Error(err)
			}
			break
		}
		if err := conn.WriteJSON(d.predictMessage(ctx, message, l)); err != nil {
			l.Error(errors.Wrap(err, "Cannot write to websocket"))
			break
		}
	}
	l.Infof("ws connection finished")
}

func (d *ServiceData) predictMessage(ctx context.Context, message []byte, l *logrus.Entry) interface{} {
	var input Input
	if err := json.Unmarshal(message, &input); err != nil {
		l.Error(errors.Wrap(err, "Cannot decode input"))
		d.metrics.errors.WithLabelValues(errClient).Inc()
		return &ErrorOutput{Error: ErrDecode.Error()}
	}
	res, err := d.predict(ctx, &input)
	if err != nil {
		kind := errInference
		if isClientError(err) {
			kind = errClient
		}
		l.Error(err)
		d.metrics.errors.WithLabelValues(kind).Inc()
		return &ErrorOutput{Error: err.Error()}
	}
	d.metrics.observe(res)
	return res
}

func (d *ServiceData) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range d.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
