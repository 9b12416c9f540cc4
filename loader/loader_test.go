package loader_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Jecci-cmd/y86pipe/loader"
)

var _ = Describe("Load", func() {
	It("parses a data line into a byte-addressed image", func() {
		src := "0x000: 30f034120000000000000000 | irmovq $0x1234,%rax\n" +
			"0x00a: 00                       | halt\n"
		img, err := loader.Load(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Empty()).To(BeFalse())
		Expect(img.Bytes[0]).To(Equal(byte(0x30)))
		Expect(img.Bytes[1]).To(Equal(byte(0xf0)))
		Expect(img.Bytes[10]).To(Equal(byte(0x00)))
	})

	It("ignores comment and blank lines", func() {
		src := "# a comment\n\n0x000: 00 | halt\n"
		img, err := loader.Load(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bytes).To(Equal([]byte{0x00}))
	})

	It("ignores lines without a pipe or without a colon", func() {
		src := "0x000 00\njust text | no colon before pipe\n0x000: 00 | halt\n"
		img, err := loader.Load(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bytes).To(Equal([]byte{0x00}))
	})

	It("pads zeros up to the maximum touched address", func() {
		src := "0x005: 0102 | two bytes at offset 5\n"
		img, err := loader.Load(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bytes).To(HaveLen(7))
		Expect(img.Bytes[5]).To(Equal(byte(0x01)))
		Expect(img.Bytes[6]).To(Equal(byte(0x02)))
	})

	It("reports an empty image when no data line is present", func() {
		img, err := loader.Load(strings.NewReader("# nothing here\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Empty()).To(BeTrue())
	})
})
