// Package tts synthesizes speech through the Microsoft Edge read-aloud
// service: voice listing over REST and synthesis over its websocket protocol.
package tts

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	synthesisURL = "wss://speech.platform.bing.com/consumer/speech/synthesize/" +
		"readaloud/edge/v1?TrustedClientToken=" + trustedClientToken

	voicesURL = "https://speech.platform.bing.com/consumer/speech/synthesize/" +
		"readaloud/voices/list?trustedclienttoken=" + trustedClientToken

	outputFormat = "audio-24khz-48kbitrate-mono-mp3"

	synthesisTimeout = 30 * time.Second
)

// Client talks to the Edge read-aloud service.
type Client struct{}

// NewClient creates an Edge TTS client.
func NewClient() *Client {
	return &Client{}
}

// Synthesize converts text to MP3 audio with the given voice, rate and
// volume. Emojis are stripped first; they break the synthesis service.
func (c *Client) Synthesize(ctx context.Context, text, voice, rate, volume string) ([]byte, error) {
	clean := strings.TrimSpace(stripEmojis(text))
	if clean == "" {
		return nil, fmt.Errorf("nothing to synthesize after cleanup")
	}

	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, synthesisURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial synthesis endpoint: %w", err)
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "done")
	}()
	// Audio frames for one utterance can exceed the default read limit.
	conn.SetReadLimit(1 << 22)

	requestID := strings.ReplaceAll(uuid.NewString(), "-", "")

	if err := conn.Write(ctx, websocket.MessageText, speechConfigMessage()); err != nil {
		return nil, fmt.Errorf("send speech config: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, ssmlMessage(requestID, clean, voice, rate, volume)); err != nil {
		return nil, fmt.Errorf("send ssml: %w", err)
	}

	return readAudio(ctx, conn)
}

// readAudio collects binary audio frames until the service signals turn.end.
func readAudio(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	var audio []byte
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read synthesis frame: %w", err)
		}

		switch msgType {
		case websocket.MessageText:
			if strings.Contains(string(data), "Path:turn.end") {
				if len(audio) == 0 {
					return nil, fmt.Errorf("synthesis produced no audio")
				}
				return audio, nil
			}
		case websocket.MessageBinary:
			if payload, ok := parseAudioFrame(data); ok {
				audio = append(audio, payload...)
			}
		}
	}
}

// parseAudioFrame splits a binary frame into its text header and payload and
// returns the payload when the header marks it as audio. The frame starts
// with a big-endian 2-byte header length.
func parseAudioFrame(data []byte) ([]byte, bool) {
	if len(data) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if len(data) < 2+headerLen {
		return nil, false
	}
	header := string(data[2 : 2+headerLen])
	if !strings.Contains(header, "Path:audio") {
		return nil, false
	}
	return data[2+headerLen:], true
}

func speechConfigMessage() []byte {
	const configJSON = `{"context":{"synthesis":{"audio":{"metadataoptions":` +
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + outputFormat + `"}}}}`

	var b strings.Builder
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	b.WriteString("Path:speech.config\r\n\r\n")
	b.WriteString(configJSON)
	return []byte(b.String())
}

func ssmlMessage(requestID, text, voice, rate, volume string) []byte {
	ssml := fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='es-MX'>`+
			`<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='%s'>%s</prosody></voice></speak>`,
		voice, rate, volume, escapeXML(text))

	var b strings.Builder
	b.WriteString("X-RequestId:" + requestID + "\r\n")
	b.WriteString("X-Timestamp:" + timestamp() + "\r\n")
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	b.WriteString("Path:ssml\r\n\r\n")
	b.WriteString(ssml)
	return []byte(b.String())
}

func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
