package impulse

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/akmonengine/impulse/actor"
)

// PairHandler receives the overlap transitions found by the broad phase.
// Both callbacks run synchronously inside AddObject, UpdateObject and RemoveObject.
type PairHandler interface {
	BroadPhaseNotifyAddedOverlappingPair(a, b *actor.RigidBody) error
	BroadPhaseNotifyRemovedOverlappingPair(a, b *actor.RigidBody) error
}

type proxy struct {
	body     *actor.RigidBody
	aabb     actor.AABB
	partners map[actor.BodyID]*proxy
}

// less orders proxies by AABB min x, ties broken by body id
func (p *proxy) less(other *proxy) bool {
	if p.aabb.Min.X() != other.aabb.Min.X() {
		return p.aabb.Min.X() < other.aabb.Min.X()
	}
	return p.body.ID < other.body.ID
}

// SweepAndPrune keeps the body bounds sorted on the x axis. Overlap queries
// sweep the sorted list, prune on x, then test the full boxes.
// Each proxy remembers its current partners so every transition is reported once.
type SweepAndPrune struct {
	handler PairHandler
	proxies []*proxy
	byID    map[actor.BodyID]*proxy
}

func NewSweepAndPrune(handler PairHandler) *SweepAndPrune {
	return &SweepAndPrune{
		handler: handler,
		byID:    make(map[actor.BodyID]*proxy),
	}
}

func (s *SweepAndPrune) Len() int {
	return len(s.proxies)
}

// AddObject inserts the body and reports every overlap with the bodies already present.
func (s *SweepAndPrune) AddObject(body *actor.RigidBody, aabb actor.AABB) error {
	if _, ok := s.byID[body.ID]; ok {
		return fmt.Errorf("%w: body %d in broad phase", ErrDuplicateBody, body.ID)
	}

	p := &proxy{body: body, aabb: aabb, partners: make(map[actor.BodyID]*proxy)}
	s.byID[body.ID] = p
	s.proxies = append(s.proxies, p)
	s.sortProxy(len(s.proxies) - 1)

	for _, other := range s.query(p) {
		if err := s.link(p, other); err != nil {
			return err
		}
	}

	return nil
}

// RemoveObject drops the body and reports the end of each of its overlaps,
// partners in ascending id order.
func (s *SweepAndPrune) RemoveObject(body *actor.RigidBody) error {
	p, ok := s.byID[body.ID]
	if !ok {
		return fmt.Errorf("%w: body %d in broad phase", ErrUnknownBody, body.ID)
	}

	for _, other := range sortedPartners(p) {
		if err := s.unlink(p, other); err != nil {
			return err
		}
	}

	delete(s.byID, body.ID)
	index := slices.Index(s.proxies, p)
	s.proxies = slices.Delete(s.proxies, index, index+1)

	return nil
}

// UpdateObject moves the body bounds, then reports the overlaps that ended
// and those that started.
func (s *SweepAndPrune) UpdateObject(body *actor.RigidBody, aabb actor.AABB) error {
	p, ok := s.byID[body.ID]
	if !ok {
		return fmt.Errorf("%w: body %d in broad phase", ErrUnknownBody, body.ID)
	}

	p.aabb = aabb
	s.sortProxy(slices.Index(s.proxies, p))

	for _, other := range sortedPartners(p) {
		if !p.aabb.Overlaps(other.aabb) {
			if err := s.unlink(p, other); err != nil {
				return err
			}
		}
	}

	for _, other := range s.query(p) {
		if _, known := p.partners[other.body.ID]; known {
			continue
		}
		if err := s.link(p, other); err != nil {
			return err
		}
	}

	return nil
}

// sortProxy restores the order after the proxy at index changed.
// Bodies move little between steps, so a single insertion pass is enough.
func (s *SweepAndPrune) sortProxy(index int) {
	for index > 0 && s.proxies[index].less(s.proxies[index-1]) {
		s.proxies[index], s.proxies[index-1] = s.proxies[index-1], s.proxies[index]
		index--
	}
	for index < len(s.proxies)-1 && s.proxies[index+1].less(s.proxies[index]) {
		s.proxies[index], s.proxies[index+1] = s.proxies[index+1], s.proxies[index]
		index++
	}
}

// query returns the proxies overlapping p, in sweep order
func (s *SweepAndPrune) query(p *proxy) []*proxy {
	var overlaps []*proxy

	for _, other := range s.proxies {
		if other.aabb.Min.X() > p.aabb.Max.X() {
			break
		}
		if other == p || other.aabb.Max.X() < p.aabb.Min.X() {
			continue
		}
		if p.aabb.Overlaps(other.aabb) {
			overlaps = append(overlaps, other)
		}
	}

	return overlaps
}

func (s *SweepAndPrune) link(a, b *proxy) error {
	a.partners[b.body.ID] = b
	b.partners[a.body.ID] = a
	return s.handler.BroadPhaseNotifyAddedOverlappingPair(a.body, b.body)
}

func (s *SweepAndPrune) unlink(a, b *proxy) error {
	delete(a.partners, b.body.ID)
	delete(b.partners, a.body.ID)
	return s.handler.BroadPhaseNotifyRemovedOverlappingPair(a.body, b.body)
}

func sortedPartners(p *proxy) []*proxy {
	partners := make([]*proxy, 0, len(p.partners))
	for _, other := range p.partners {
		partners = append(partners, other)
	}
	slices.SortFunc(partners, func(a, b *proxy) int {
		return cmp.Compare(a.body.ID, b.body.ID)
	})
	return partners
}
