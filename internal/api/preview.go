package api

import (
	"bytes"
	"image"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/internal/logging"
)

// preview streams composited preview frames as binary JPEG messages. A slow
// client only ever receives the newest frame.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		logging.Logger().Debug("api: preview upgrade", "err", err)
		return
	}
	defer conn.Close()

	frames := make(chan *image.RGBA, 1)
	cancel := s.cam.Preview().Subscribe(func(img *image.RGBA) {
		select {
		case frames <- img:
		default:
			select {
			case <-frames:
			default:
			}
			select {
			case frames <- img:
			default:
			}
		}
	})
	defer cancel()

	// Reading is needed to process close and ping frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	scale := float64(s.previewQuality) / 100
	var buf bytes.Buffer
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case img := <-frames:
			buf.Reset()
			if err := capture.EncodeJPEG(&buf, img, scale); err != nil {
				logging.Logger().Warn("api: preview encode", "err", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
				logging.Logger().Debug("api: preview write", "err", err)
				return
			}
		}
	}
}
