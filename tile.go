package tiff

import (
	"image"

	"github.com/mdouchement/rawtiff/pixel"
)

//------------------------//
// Tile reader            //
//------------------------//

// tileCodec decodes tile organized images.
type tileCodec struct {
	d *decoder
}

func (c *tileCodec) elementType() pixel.Type {
	return c.d.geometry.Type
}

// read loads every tile intersecting the window into a tile aligned scratch
// buffer and crops it to the window. Tile padding past the image edges only
// lives in the scratch buffer.
func (c *tileCodec) read(window image.Rectangle) (*pixel.Buffer, error) {
	g := c.d.geometry
	tw, th := g.TileWidth, g.TileHeight
	across, down := g.blockGrid()

	// Tile aligned bounding region.
	tx0, ty0 := window.Min.X/tw, window.Min.Y/th
	tx1, ty1 := (window.Max.X-1)/tw, (window.Max.Y-1)/th
	origin := image.Pt(tx0*tw, ty0*th)

	scratch, err := pixel.New(g.Type, g.SamplesPerPixel, (ty1-ty0+1)*th, (tx1-tx0+1)*tw)
	if err != nil {
		return nil, err
	}

	for plane := 0; plane < g.planes(); plane++ {
		for ty := ty0; ty <= ty1; ty++ {
			for tx := tx0; tx <= tx1; tx++ {
				tile, err := c.d.readBlock(plane*across*down+ty*across+tx, th)
				if err != nil {
					return nil, err
				}
				c.place(scratch, tile, tx*tw-origin.X, ty*th-origin.Y, plane)
			}
		}
	}

	return scratch.Crop(window.Sub(origin))
}

// place copies a decoded tile at (x, y) of dst. A tile of a separate plane
// configuration only holds the samples of the given plane.
func (c *tileCodec) place(dst *pixel.Buffer, tile []byte, x, y, plane int) {
	g := c.d.geometry
	tw, th := g.TileWidth, g.TileHeight
	size := g.Type.Size()
	psize := dst.PixelSize()
	stride := dst.Stride()

	if g.PlanarConfiguration == PlanarContig {
		n := tw * psize
		for row := 0; row < th; row++ {
			i := (y+row)*stride + x*psize
			copy(dst.Pix[i:i+n], tile[row*n:(row+1)*n])
		}
		return
	}

	for row := 0; row < th; row++ {
		i := (y+row)*stride + x*psize + plane*size
		src := tile[row*tw*size:]
		for col := 0; col < tw; col++ {
			copy(dst.Pix[i:i+size], src[col*size:(col+1)*size])
			i += psize
		}
	}
}
