package rpcframe

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/solidlsp/solidlsp/internal/lsperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	require.NoError(t, WriteFrame(&buf, body))

	got, err := ReadFrame(bufio.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestReadFrameCaseInsensitiveHeaders(t *testing.T) {
	body := []byte(`{"ok":true}`)
	raw := "content-LENGTH: " + strconv.Itoa(len(body)) + "\r\ncontent-type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n" + string(body)

	got, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestReadFrameMissingContentLength(t *testing.T) {
	raw := "Content-Type: application/json\r\n\r\n{}"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
	assert.ErrorIs(t, err, lsperrors.ErrProtocolError)
}

func TestReadFrameMalformedHeader(t *testing.T) {
	raw := "NotAHeader\r\n\r\n"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
	assert.ErrorIs(t, err, lsperrors.ErrProtocolError)
}

func TestReadFrameShortBody(t *testing.T) {
	raw := "Content-Length: 10\r\n\r\n{}"
	_, err := ReadFrame(bufio.NewReader(strings.NewReader(raw)))
	require.Error(t, err)
	assert.ErrorIs(t, err, lsperrors.ErrProtocolError)
}

func TestReadFrameInvalidUTF8(t *testing.T) {
	body := []byte{0xff, 0xfe, 0xfd}
	raw := "Content-Length: 3\r\n\r\n"
	buf := append([]byte(raw), body...)
	_, err := ReadFrame(bufio.NewReader(bytes.NewReader(buf)))
	require.Error(t, err)
	assert.ErrorIs(t, err, lsperrors.ErrProtocolError)
}
