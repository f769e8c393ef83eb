package ui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/tarefo/tarefo/internal/model"
)

func TestTaskLineTruncatesByDisplayWidth(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local)

	long := model.Task{ID: 1, Title: "Trabalho de Programação Móvel e Distribuída", Status: model.StatusTodo}
	line := taskLine(long, now)
	assert.True(t, utf8.ValidString(line), "truncation must not split a rune: %q", line)
	assert.True(t, strings.HasSuffix(line, "..."))
	assert.LessOrEqual(t, ansi.StringWidth(line), 26)

	short := model.Task{ID: 2, Title: "Comprar pão", Status: model.StatusTodo}
	assert.Equal(t, "Comprar pão", taskLine(short, now))
}
