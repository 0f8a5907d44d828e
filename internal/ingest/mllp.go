package ingest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"patient-journey/internal/hl7"
)

// MLLP framing bytes: <VT> message <FS><CR>.
const (
	mllpStart = 0x0b
	mllpEnd   = 0x1c
	mllpCR    = 0x0d
)

const readTimeout = 5 * time.Minute

// MLLPServer accepts interface-engine connections and feeds each framed
// message through the importer, sniffing the dialect per message.
type MLLPServer struct {
	importer *Importer
	logger   *zap.Logger
}

func NewMLLPServer(importer *Importer, logger *zap.Logger) *MLLPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MLLPServer{importer: importer, logger: logger}
}

// Serve accepts connections until the context is cancelled or the
// listener closes. Each connection gets its own goroutine; the feed's
// interface engine keeps a long-lived connection open and streams frames
// on it.
func (s *MLLPServer) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *MLLPServer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	s.logger.Info("mllp connection opened", zap.String("remote", remote))

	reader := bufio.NewReader(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		frame, err := readFrame(reader)
		if err != nil {
			s.logger.Info("mllp connection closed",
				zap.String("remote", remote), zap.Error(err))
			return
		}
		raw := string(frame)
		dialect := SniffDialect(raw)
		_, err = s.importer.ImportMessage(ctx, raw, dialect)
		ack := buildAck(raw, err == nil)
		if err != nil {
			s.logger.Warn("mllp message rejected",
				zap.String("remote", remote), zap.Error(err))
		}
		if _, err := conn.Write(ack); err != nil {
			return
		}
	}
}

// readFrame reads one MLLP frame, discarding any bytes before the start
// marker.
func readFrame(r *bufio.Reader) ([]byte, error) {
	if _, err := r.ReadBytes(mllpStart); err != nil {
		return nil, err
	}
	body, err := r.ReadBytes(mllpEnd)
	if err != nil {
		return nil, err
	}
	body = body[:len(body)-1]
	// Trailing CR after the end marker.
	if b, err := r.ReadByte(); err == nil && b != mllpCR {
		r.UnreadByte()
	}
	return body, nil
}

// buildAck frames an HL7 acknowledgement for the given message: AA on
// success, AE when storage failed.
func buildAck(raw string, ok bool) []byte {
	controlID := ""
	for _, seg := range hl7.Tokenize(raw) {
		if seg.Tag == "MSH" {
			controlID = seg.Field(9)
			break
		}
	}
	code := "AA"
	if !ok {
		code = "AE"
	}
	var buf bytes.Buffer
	buf.WriteByte(mllpStart)
	fmt.Fprintf(&buf, "MSH|^~\\&|RECEIVER|RECEIVER|SENDER|SENDER|%s||ACK|%s|P|2.3\rMSA|%s|%s",
		time.Now().Format("20060102150405"), controlID, code, controlID)
	buf.WriteByte(mllpEnd)
	buf.WriteByte(mllpCR)
	return buf.Bytes()
}
