package signing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/coords"
	"github.com/JaimeStill/attest/pkg/pdfmark"
)

var letter = coords.Size{Width: 612, Height: 792}

func TestClientPlacements(t *testing.T) {
	at := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)
	image := []byte("png")

	t.Run("one placement per marker in order", func(t *testing.T) {
		markers := []signing.Marker{
			{ID: "a", X: 72, Y: 100, Width: 180, Height: 54, Page: 1},
			{ID: "b", X: 300, Y: 400, Width: 150, Height: 40, Page: 3},
			{ID: "c", X: 72, Y: 100, Width: 180, Height: 54, Page: 2},
		}

		got := signing.ClientPlacements(markers, image, "Jordan Client", at)
		require.Len(t, got, 3)
		for i, p := range got {
			assert.Equal(t, markers[i].Page, p.Page)
			assert.Equal(t, markers[i].Rect(), p.Rect)
			assert.Equal(t, image, p.Image)
			assert.Equal(t, []string{"Jordan Client", "2026-10-18"}, p.Lines)
			assert.Equal(t, pdfmark.StyleSignature, p.Style)
		}
	})

	t.Run("no markers uses the default placement", func(t *testing.T) {
		got := signing.ClientPlacements(nil, image, "Jordan Client", at)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].Page)
		assert.Equal(t, signing.DefaultPlacement, got[0].Rect)
	})
}

func TestMarkerPlacements(t *testing.T) {
	markers := []signing.Marker{
		{ID: "a", X: 72, Y: 100, Width: 180, Height: 54, Page: 1},
		{ID: "b", X: 300, Y: 400, Width: 150, Height: 40, Page: 2},
	}

	got := signing.MarkerPlacements(markers)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, pdfmark.StyleMarker, p.Style)
		assert.Equal(t, []string{signing.SignHereLabel}, p.Lines)
		assert.Nil(t, p.Image)
	}
}

func TestUIMarkerToDocument(t *testing.T) {
	pages := []coords.Size{letter, letter, letter}
	container := coords.Size{Width: 600, Height: 800}

	tests := []struct {
		name    string
		marker  signing.UIMarker
		want    signing.Marker
		wantErr error
	}{
		{
			name: "scales onto the page",
			marker: signing.UIMarker{
				ID: "m1", Page: 2, Container: container,
				Rect: coords.Rect{X: 100, Y: 200, Width: 150, Height: 50},
			},
			want: signing.Marker{ID: "m1", X: 102, Y: 544.5, Width: 153, Height: 49.5, Page: 2},
		},
		{
			name: "clamps into the container first",
			marker: signing.UIMarker{
				ID: "m2", Page: 1, Container: container,
				Rect: coords.Rect{X: 550, Y: 780, Width: 100, Height: 50},
			},
			want: signing.Marker{ID: "m2", X: 510, Y: 0, Width: 102, Height: 49.5, Page: 1},
		},
		{
			name: "page beyond document",
			marker: signing.UIMarker{
				ID: "m3", Page: 4, Container: container,
				Rect: coords.Rect{X: 10, Y: 10, Width: 10, Height: 10},
			},
			wantErr: signing.ErrInvalidMarker,
		},
		{
			name: "page zero",
			marker: signing.UIMarker{
				ID: "m4", Page: 0, Container: container,
				Rect: coords.Rect{X: 10, Y: 10, Width: 10, Height: 10},
			},
			wantErr: signing.ErrInvalidMarker,
		},
		{
			name: "container not measured",
			marker: signing.UIMarker{
				ID: "m5", Page: 1,
				Rect: coords.Rect{X: 10, Y: 10, Width: 10, Height: 10},
			},
			wantErr: coords.ErrLayoutNotReady,
		},
		{
			name: "no area",
			marker: signing.UIMarker{
				ID: "m6", Page: 1, Container: container,
				Rect: coords.Rect{X: 10, Y: 10, Width: 0, Height: 10},
			},
			wantErr: signing.ErrInvalidMarker,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.marker.ToDocument(pages)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Page, got.Page)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Width, got.Width, 1e-9)
			assert.InDelta(t, tt.want.Height, got.Height, 1e-9)

			assert.True(t, coords.Within(got.Rect(), letter.Width, letter.Height))
		})
	}
}
