package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/docchat/internal/model"
)

func doc(name, content string) *model.Document {
	return &model.Document{Name: name, Content: content, Readable: content != ""}
}

func TestBuildContextRanksByScore(t *testing.T) {
	docs := []*model.Document{
		doc("low.txt", "calibration appears once in this file about other things entirely"),
		doc("high.txt", "calibration calibration calibration for the sensor calibration bench"),
		doc("none.txt", "completely unrelated content about cooking pasta"),
	}
	ctx := BuildContext("how does calibration work", docs, 3)

	require.False(t, ctx.Empty())
	require.False(t, ctx.General)
	require.Equal(t, []string{"high.txt", "low.txt"}, ctx.Cited)
	require.Less(t, strings.Index(ctx.Text, "high.txt"), strings.Index(ctx.Text, "low.txt"))
	require.NotContains(t, ctx.Text, "none.txt")
}

func TestBuildContextTopNLimit(t *testing.T) {
	docs := []*model.Document{
		doc("a.txt", "calibration one"),
		doc("b.txt", "calibration two"),
		doc("c.txt", "calibration three"),
		doc("d.txt", "calibration four"),
	}
	ctx := BuildContext("calibration", docs, 2)
	require.Len(t, ctx.Cited, 2)
}

func TestBuildContextTieOrderStable(t *testing.T) {
	// Equal scores keep scan order.
	docs := []*model.Document{
		doc("first.txt", "sensor data here"),
		doc("second.txt", "sensor data there"),
	}
	ctx := BuildContext("sensor", docs, 3)
	require.Equal(t, []string{"first.txt", "second.txt"}, ctx.Cited)
}

func TestBuildContextSizeCap(t *testing.T) {
	big := strings.Repeat("the calibration of the sensor requires careful calibration steps ", 300)
	docs := []*model.Document{doc("big.txt", big)}
	// Enough matching chunks to blow well past the cap before truncation.
	ctx := BuildContext("calibration sensor", docs, 50)
	require.Len(t, []rune(ctx.Text), 2400)
}

func TestBuildContextScoreOrdering(t *testing.T) {
	// Scores: 1 hit + section word = 5; 3 hits + section word = 9;
	// 1 hit = 2. Expect the two 9s first-seen order, then the 5, no 2.
	docs := []*model.Document{
		doc("five.txt", "introduction the pump is described"),
		doc("nine-a.txt", "introduction the pump needs a pump and another pump"),
		doc("two.txt", "a pump appears here"),
		doc("nine-b.txt", "background pump tests pump the pump"),
	}
	ctx := BuildContext("pump", docs, 3)
	require.Equal(t, []string{"nine-a.txt", "nine-b.txt", "five.txt"}, ctx.Cited)
	require.NotContains(t, ctx.Text, "two.txt")
}

func TestBuildContextGeneralWhenNoMatch(t *testing.T) {
	docs := []*model.Document{
		doc("guide.txt", "this file explains how the pump assembly is serviced"),
	}
	ctx := BuildContext("quantum entanglement", docs, 3)

	require.False(t, ctx.Empty())
	require.True(t, ctx.General)
	require.Equal(t, []string{"guide.txt"}, ctx.Cited)
	require.Contains(t, ctx.Text, "guide.txt")
}

func TestBuildContextEmptyInputs(t *testing.T) {
	require.True(t, BuildContext("anything", nil, 3).Empty())

	unreadable := []*model.Document{doc("scan.pdf", "")}
	require.True(t, BuildContext("anything", unreadable, 3).Empty())
}
