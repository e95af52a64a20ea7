package types

import (
	"go.uber.org/atomic"
)

type StatisticsItem struct {
	Count uint64 `json:",omitempty"`
	Bytes uint64 `json:",omitempty"`
}

func (c StatisticsItem) ToCounters() *CountersItem {
	result := NewCountersItem()
	result.Count.Store(c.Count)
	result.Bytes.Store(c.Bytes)
	return result
}

type StatisticsSubSection struct {
	Unknown StatisticsItem `json:",omitempty"`
	Other   StatisticsItem `json:",omitempty"`
	Video   StatisticsItem `json:",omitempty"`
	Audio   StatisticsItem `json:",omitempty"`
	Text    StatisticsItem `json:",omitempty"`
}

type StatisticsSection struct {
	Received StatisticsSubSection
	Sent     StatisticsSubSection
	Rejected StatisticsSubSection
}

type Statistics struct {
	Buffers StatisticsSection
	Events  StatisticsSection
}

type CountersItem struct {
	Count atomic.Uint64
	Bytes atomic.Uint64
}

func NewCountersItem() *CountersItem {
	return &CountersItem{}
}

func (c *CountersItem) Increment(msgSize uint64) {
	c.Count.Inc()
	c.Bytes.Add(msgSize)
}

func (c *CountersItem) ToStats() StatisticsItem {
	return StatisticsItem{
		Count: c.Count.Load(),
		Bytes: c.Bytes.Load(),
	}
}

type CountersSubSection struct {
	Unknown *CountersItem
	Other   *CountersItem
	Video   *CountersItem
	Audio   *CountersItem
	Text    *CountersItem
}

func NewCountersSubSection() CountersSubSection {
	return CountersSubSection{
		Unknown: NewCountersItem(),
		Other:   NewCountersItem(),
		Video:   NewCountersItem(),
		Audio:   NewCountersItem(),
		Text:    NewCountersItem(),
	}
}

func (s *CountersSubSection) Get(mediaType MediaType) *CountersItem {
	switch mediaType {
	case MediaTypeVideo:
		return s.Video
	case MediaTypeAudio:
		return s.Audio
	case MediaTypeText:
		return s.Text
	case MediaTypeUnknown:
		return s.Unknown
	default:
		return s.Other
	}
}

func (s *CountersSubSection) Increment(mediaType MediaType, msgSize uint64) {
	s.Get(mediaType).Increment(msgSize)
}

func (s *CountersSubSection) TotalCount() uint64 {
	var total uint64
	for _, item := range s.items() {
		total += item.Count.Load()
	}
	return total
}

func (s *CountersSubSection) TotalBytes() uint64 {
	var total uint64
	for _, item := range s.items() {
		total += item.Bytes.Load()
	}
	return total
}

func (s *CountersSubSection) items() []*CountersItem {
	return []*CountersItem{s.Unknown, s.Other, s.Video, s.Audio, s.Text}
}

func (s *CountersSubSection) ToStats() StatisticsSubSection {
	return StatisticsSubSection{
		Unknown: s.Unknown.ToStats(),
		Other:   s.Other.ToStats(),
		Video:   s.Video.ToStats(),
		Audio:   s.Audio.ToStats(),
		Text:    s.Text.ToStats(),
	}
}

func (s StatisticsSubSection) ToCounters() *CountersSubSection {
	return &CountersSubSection{
		Unknown: s.Unknown.ToCounters(),
		Other:   s.Other.ToCounters(),
		Video:   s.Video.ToCounters(),
		Audio:   s.Audio.ToCounters(),
		Text:    s.Text.ToCounters(),
	}
}

type CountersSection struct {
	Received CountersSubSection
	Sent     CountersSubSection
	Rejected CountersSubSection
}

func NewCountersSection() CountersSection {
	return CountersSection{
		Received: NewCountersSubSection(),
		Sent:     NewCountersSubSection(),
		Rejected: NewCountersSubSection(),
	}
}

func (s *CountersSection) ToStats() StatisticsSection {
	return StatisticsSection{
		Received: s.Received.ToStats(),
		Sent:     s.Sent.ToStats(),
		Rejected: s.Rejected.ToStats(),
	}
}

type Counters struct {
	Buffers CountersSection
	Events  CountersSection
}

func NewCounters() *Counters {
	return &Counters{
		Buffers: NewCountersSection(),
		Events:  NewCountersSection(),
	}
}

func (c *Counters) ToStats() Statistics {
	return Statistics{
		Buffers: c.Buffers.ToStats(),
		Events:  c.Events.ToStats(),
	}
}
