package serial

// Printer emulates the Game Boy Printer accessory: a Device that
// receives the GB Printer serial protocol (magic bytes, command,
// compression flag, length, payload, checksum) and accumulates the
// 2bpp tile data of each "print" command into a page buffer a host
// can render to an image. Simplified to the commands real cartridges
// actually issue (init/data/print/status).
type Printer struct {
	state   printerState
	payload []byte
	wantLen int

	cmd         uint8
	compression uint8
	checksum    uint16

	// Page accumulates 2bpp tile rows across one or more "data" packets
	// until a "print" command is received.
	Page []byte

	// Printing is set once a full print command has been received and
	// cleared once the host calls TakePage.
	Printing bool

	shiftIn, shiftOut uint8
	bitPos            uint8
}

type printerState uint8

const (
	stateMagic1 printerState = iota
	stateMagic2
	stateCommand
	stateCompression
	stateLenLo
	stateLenHi
	stateData
	stateChecksumLo
	stateChecksumHi
	stateKeepAlive
	stateStatus
)

const (
	cmdInit  = 0x01
	cmdData  = 0x04
	cmdPrint = 0x02
)

// NewPrinter returns an idle Printer ready to be Attach-ed to a serial
// Controller.
func NewPrinter() *Printer {
	return &Printer{state: stateMagic1}
}

func (p *Printer) Send() bool {
	bit := p.shiftOut&0x80 != 0
	p.shiftOut <<= 1
	return bit
}

func (p *Printer) Receive(bit bool) {
	p.shiftIn <<= 1
	if bit {
		p.shiftIn |= 1
	}
	p.bitPos++
	if p.bitPos < 8 {
		return
	}
	p.bitPos = 0
	p.consume(p.shiftIn)
	p.shiftIn = 0
}

func (p *Printer) consume(b uint8) {
	switch p.state {
	case stateMagic1:
		if b == 0x88 {
			p.state = stateMagic2
		}
	case stateMagic2:
		if b == 0x33 {
			p.state = stateCommand
		} else {
			p.state = stateMagic1
		}
	case stateCommand:
		p.cmd = b
		p.state = stateCompression
	case stateCompression:
		p.compression = b
		p.state = stateLenLo
	case stateLenLo:
		p.wantLen = int(b)
		p.state = stateLenHi
	case stateLenHi:
		p.wantLen |= int(b) << 8
		p.payload = p.payload[:0]
		if p.wantLen == 0 {
			p.state = stateChecksumLo
		} else {
			p.state = stateData
		}
	case stateData:
		p.payload = append(p.payload, b)
		if len(p.payload) >= p.wantLen {
			p.state = stateChecksumLo
		}
	case stateChecksumLo:
		p.checksum = uint16(b)
		p.state = stateChecksumHi
	case stateChecksumHi:
		p.checksum |= uint16(b) << 8
		p.state = stateKeepAlive
		// the printer acks with 0x81 then a status byte; the next two
		// shift-clocks return those instead of a zero.
		p.shiftOut = 0x81
	case stateKeepAlive:
		p.state = stateStatus
		p.shiftOut = p.execute()
	case stateStatus:
		p.state = stateMagic1
	}
}

func (p *Printer) execute() uint8 {
	switch p.cmd {
	case cmdInit:
		p.Page = p.Page[:0]
		p.Printing = false
	case cmdData:
		p.Page = append(p.Page, p.payload...)
	case cmdPrint:
		p.Printing = true
	}
	return 0
}

// TakePage returns the accumulated page buffer and clears Printing,
// one-shot like the core's other host-polled signals.
func (p *Printer) TakePage() []byte {
	page := p.Page
	p.Page = nil
	p.Printing = false
	return page
}

var _ Device = (*Printer)(nil)
